package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"hadassah/internal/ipc"
)

type client struct {
	socket  string
	timeout time.Duration
}

func (c *client) send(ctx context.Context, msg ipc.ControlMessage) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	reply, err := ipc.Send(ctx, c.socket, msg)
	if err != nil {
		return "", fmt.Errorf("hadassah-daemon not running? %w", err)
	}
	if !reply.OK {
		return "", errors.New(reply.Error)
	}
	return reply.Text, nil
}

// run builds a RunE that sends cmd, with the joined args as text.
func (c *client) run(cmd string) func(*cobra.Command, []string) error {
	return func(cc *cobra.Command, args []string) error {
		text, err := c.send(cc.Context(), ipc.ControlMessage{Cmd: cmd, Text: strings.Join(args, " ")})
		if err != nil {
			return err
		}
		if text != "" {
			fmt.Fprintln(cc.OutOrStdout(), text)
		}
		return nil
	}
}

func newRootCmd() *cobra.Command {
	c := &client{}

	root := &cobra.Command{
		Use:           "hadassah-ctl",
		Short:         "Control a running hadassah-daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&c.socket, "socket", "s", ipc.DefaultSocketPath(), "Control socket path")
	root.PersistentFlags().DurationVarP(&c.timeout, "timeout", "t", time.Minute, "Request timeout")

	root.AddCommand(
		&cobra.Command{
			Use:   "trigger",
			Short: "Listen for one spoken command",
			Args:  cobra.NoArgs,
			RunE:  c.run(ipc.CmdTrigger),
		},
		&cobra.Command{
			Use:   "say [text]",
			Short: "Send a typed command",
			Args:  cobra.MinimumNArgs(1),
			RunE:  c.run(ipc.CmdSay),
		},
		&cobra.Command{
			Use:   "stop",
			Short: "Stop speaking and listening",
			Args:  cobra.NoArgs,
			RunE:  c.run(ipc.CmdStop),
		},
		&cobra.Command{
			Use:   "repeat",
			Short: "Speak the last reply again",
			Args:  cobra.NoArgs,
			RunE:  c.run(ipc.CmdRepeat),
		},
		&cobra.Command{
			Use:   "commands",
			Short: "List example commands",
			Args:  cobra.NoArgs,
			RunE:  c.run(ipc.CmdCommands),
		},
		newHistoryCmd(c),
		newPrefsCmd(c),
	)
	return root
}

func newHistoryCmd(c *client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show remembered conversations",
		Args:  cobra.NoArgs,
		RunE:  c.run(ipc.CmdHistory),
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Forget all conversations",
		Args:  cobra.NoArgs,
		RunE:  c.run(ipc.CmdClearHistory),
	})
	return cmd
}

func newPrefsCmd(c *client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show preferences",
		Args:  cobra.NoArgs,
		RunE:  c.run(ipc.CmdPrefs),
	}
	cmd.AddCommand(&cobra.Command{
		Use:     "set [json]",
		Short:   "Merge a partial JSON object into the preferences",
		Example: `  hadassah-ctl prefs set '{"darkMode": true}'`,
		Args:    cobra.ExactArgs(1),
		RunE:    c.run(ipc.CmdPrefsSet),
	})
	return cmd
}
