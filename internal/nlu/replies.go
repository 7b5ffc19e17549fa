package nlu

import "fmt"

// Persona names the assistant, the app and the user in replies.
type Persona struct {
	Assistant string
	App       string
	Nickname  string
}

func DefaultPersona() Persona {
	return Persona{
		Assistant: "Hadassah",
		App:       "BarbraAI",
		Nickname:  "Barbra",
	}
}

// GreetingReplies returns the greeting pool for p.
func GreetingReplies(p Persona) []string {
	return []string{
		fmt.Sprintf("Hi %s! I'm %s, your personal AI assistant. How can I help you today?", p.Nickname, p.Assistant),
		"Hello! Ready to assist you with whatever you need.",
		"Hey there! What would you like me to help you with?",
	}
}

var UnknownReplies = []string{
	"I'm not sure I understand that command. Could you try rephrasing it?",
	"That's a new one for me! Can you explain what you'd like me to do?",
	"I'm still learning. Could you try a different way to ask that?",
}

const (
	replyWhatsAppOpened   = "Opening WhatsApp Web for you!"
	replyWhatsAppFailed   = "I couldn't open WhatsApp right now."
	replyWhatsAppClarify  = "To message someone on WhatsApp, I can open WhatsApp Web for you. Would you like me to do that?"
	replyFlashlightWeb    = "I'd love to turn on your flashlight! For security reasons, web browsers don't allow direct flashlight control. Try using your device's quick settings instead."
	replySearchClarify    = "What would you like me to search for?"
	replySearchFailed     = "I couldn't open the search results."
	replyYouTubeClarify   = "What would you like me to search on YouTube?"
	replyYouTubeFailed    = "I couldn't open YouTube."
	replyBrightness       = "I can't directly control your screen brightness from the web, but you can adjust it in your device settings or quick controls!"
	replyReminder         = "I'd love to set reminders for you! This feature is coming soon. For now, you can use your device's built-in reminder app."
	replyWeather          = "For weather information, let me search that for you!"
	replyFlashlightOn     = "Flashlight turned on!"
	replyFlashlightOff    = "Flashlight turned off!"
	replyFlashlightFailed = "I can't control the flashlight directly, but you can use your device's quick settings or control center."
	replyFlashlightAsk    = "Would you like me to turn the flashlight on or off?"
	replyVolumeUp         = "Volume increased!"
	replyVolumeDown       = "Volume decreased!"
	replyVolumeMuted      = "Volume muted!"
	replyVolumeFailed     = "I couldn't change the volume."
	replyVolumeAsk        = "I can help you adjust the volume. Say 'volume up', 'volume down', or 'mute'."
	replySaveFailed       = "I couldn't save the file. Please check permissions."
	replyNoFiles          = "No files found."
	replyNoDeviceInfo     = "I couldn't get device information."
)

func replyFlashlightInstall(p Persona) string {
	return fmt.Sprintf("Flashlight control is available when you install %s as a mobile app. For now, you can use your device's quick settings.", p.App)
}

func replyVolumeInstall(p Persona) string {
	return fmt.Sprintf("Volume control is available when you install %s as a mobile app. You can use your device's volume buttons for now.", p.App)
}

func replySaveInstall(p Persona) string {
	return fmt.Sprintf("File saving is available when you install %s as a mobile app.", p.App)
}

func defaultNote(p Persona) string {
	return "Note saved by " + p.App
}
