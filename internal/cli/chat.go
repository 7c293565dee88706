package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/futig/jarvis-backend/internal/entity"
)

var chatCmd = &cobra.Command{
	Use:   "chat <message>",
	Short: "Send one message through the chat pipeline",
	Long: `Runs a single exchange: recalls related memories, asks the model and
stores the exchange, exactly as the HTTP endpoint does.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runChat,
}

var chatHistory string

func init() {
	chatCmd.Flags().StringVar(&chatHistory, "history", "", "Recent conversation to include in the prompt")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	if err := ensureServices(ctx); err != nil {
		return err
	}

	result, err := chatService.Exchange(ctx, &entity.ChatTurn{
		UserMessage:    strings.Join(args, " "),
		HistorySnippet: chatHistory,
	})
	if err != nil {
		return err
	}

	cmd.Println(result.Reply)
	return nil
}
