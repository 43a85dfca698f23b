package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/alchemorsel/recipefinder/internal/ports/inbound"
	"github.com/spf13/cobra"
)

const chatPrompt = "> "

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive recipe console",
	Long: `Start an interactive console. Each line is handled as one recipe request.
Type "quit" or "exit" (or send EOF) to leave.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		finder, stop, err := startFinder(ctx)
		if err != nil {
			return err
		}
		defer stop()

		return runChat(ctx, finder, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

// runChat reads requests line by line until quit, EOF or cancellation.
// Unexpected pipeline errors are printed and the session continues.
func runChat(ctx context.Context, finder inbound.RecipeFinder, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "What would you like to cook? (type \"quit\" to exit)")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, chatPrompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "quit", "exit":
			fmt.Fprintln(out, "Goodbye!")
			return nil
		}

		res, err := finder.Handle(ctx, line)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}
		if err := render(out, res, false); err != nil {
			return err
		}
	}
}
