package main

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/arbor/internal/config"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/flow"
	"github.com/aretw0/arbor/pkg/manager"
	"github.com/aretw0/arbor/pkg/ports"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Drive the sample onboarding flow over stdin",
	RunE:  runREPL,
}

func init() {
	rootCmd.AddCommand(replCmd)
}

func runREPL(cmd *cobra.Command, _ []string) error {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	logger := logging.New(logging.ParseLevel(cfg.LogLevel))

	sender := ports.SenderFunc(func(_ context.Context, _, text string) error {
		fmt.Println(text)
		return nil
	})

	mgr, err := manager.New(memory.NewStore(), sampleFlows(sender),
		manager.WithLogger(logger),
		manager.WithCommandPrefix(cfg.CommandPrefix),
		manager.WithControls(flow.Controls{GoBack: cfg.Controls.GoBack, Reload: cfg.Controls.Reload}),
		manager.OnFinish(summaryCallback(sender)),
	)
	if err != nil {
		return err
	}

	fmt.Printf("Type %sstart to begin, %s to go back, %s to repeat a step. Ctrl-D exits.\n",
		cfg.CommandPrefix, cfg.Controls.GoBack, cfg.Controls.Reload)

	ctx := cmd.Context()
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		ev := flow.Event{
			Kind:      flow.KindMessage,
			UserID:    "local",
			ChannelID: "console",
			Text:      scanner.Text(),
			Private:   true,
		}
		if err := mgr.Dispatch(ctx, ev); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}
	return scanner.Err()
}
