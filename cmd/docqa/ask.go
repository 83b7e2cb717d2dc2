package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/akolanti/docqa/internal/domain/commonModels"
	"github.com/akolanti/docqa/internal/rag"
	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a single question from the ingested documents",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pipeline, err := openApp(cmd.Context(), os.Stderr)
		if err != nil {
			return err
		}
		defer closeApp(pipeline)

		answer, err := pipeline.Service.Ask(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		printAnswer(cmd.OutOrStdout(), answer)
		return nil
	},
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Ask follow-up questions interactively",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pipeline, err := openApp(cmd.Context(), os.Stderr)
		if err != nil {
			return err
		}
		defer closeApp(pipeline)

		return chatLoop(cmd, pipeline.Service, cmd.InOrStdin())
	},
}

func chatLoop(cmd *cobra.Command, svc rag.Service, in io.Reader) error {
	out := cmd.OutOrStdout()
	scanner := bufio.NewScanner(in)

	fmt.Fprintln(out, "docqa chat (/clear forgets the conversation, /docs lists documents, /exit quits)")
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		switch question {
		case "":
			continue
		case "/exit", "/quit":
			return nil
		case "/clear":
			svc.ClearHistory()
			fmt.Fprintln(out, "Conversation cleared.")
			continue
		case "/docs":
			printDocuments(out, svc.Documents())
			continue
		}

		answer, err := svc.Ask(cmd.Context(), question)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
			continue
		}
		printAnswer(out, answer)
	}
	return scanner.Err()
}

func printAnswer(w io.Writer, answer commonModels.Answer) {
	fmt.Fprintln(w, answer.Text)
	if len(answer.Sources) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Sources:")
	for _, c := range answer.Sources {
		fmt.Fprintf(w, "  %s, page %d\n", c.DocId, c.PageNum)
	}
}
