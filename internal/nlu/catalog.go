package nlu

type Category string

const (
	Communication Category = "communication"
	Device        Category = "device"
	Search        Category = "search"
	Productivity  Category = "productivity"
	Entertainment Category = "entertainment"
)

// Command is a gallery entry shown to the user. The interpreter does not
// consult the catalog when matching.
type Command struct {
	ID          string   `json:"id"`
	Text        string   `json:"text"`
	Category    Category `json:"category"`
	Icon        string   `json:"icon"`
	Description string   `json:"description"`
}

var baseCommands = []Command{
	{ID: "whatsapp", Text: "Open WhatsApp", Category: Communication, Icon: "💬", Description: "Opens WhatsApp Web in a new tab"},
	{ID: "flashlight", Text: "Turn on flashlight", Category: Device, Icon: "🔦", Description: "Activates your device flashlight"},
	{ID: "search", Text: "Search Google", Category: Search, Icon: "🔍", Description: "Performs a web search"},
	{ID: "brightness", Text: "Dim screen brightness", Category: Device, Icon: "🔅", Description: "Adjusts screen brightness settings"},
	{ID: "youtube", Text: "Search YouTube", Category: Entertainment, Icon: "📺", Description: "Opens YouTube with search query"},
	{ID: "reminder", Text: "Set reminder", Category: Productivity, Icon: "⏰", Description: "Creates a new reminder"},
}

var nativeCommands = []Command{
	{ID: "flashlight-native", Text: "Turn on flashlight", Category: Device, Icon: "🔦", Description: "Controls device flashlight (native app only)"},
	{ID: "volume-native", Text: "Volume up", Category: Device, Icon: "🔊", Description: "Adjusts device volume (native app only)"},
	{ID: "save-file", Text: "Save note to file", Category: Productivity, Icon: "💾", Description: "Saves text to device storage (native app only)"},
	{ID: "open-camera", Text: "Open camera", Category: Device, Icon: "📷", Description: "Opens device camera app (native app only)"},
}

func catalog(parts ...[]Command) []Command {
	var out []Command
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
