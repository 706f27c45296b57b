package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rhuss/evalkit/pkg/provider"
	"github.com/rhuss/evalkit/pkg/provider/databricks"
	"github.com/rhuss/evalkit/pkg/provider/registry"
)

func invokeCmd(flags *globalFlags) *cobra.Command {
	var (
		providerID string
		vars       []string
		logProbs   bool
		promptFile string
	)

	cmd := &cobra.Command{
		Use:   "invoke [prompt]",
		Short: "Send a prompt to a provider and print the result",
		Long: `Send a prompt to a provider and print the invocation result as JSON.

The prompt may be plain text, a JSON array of messages, or a YAML list of
messages starting with "- role:". Read it from a file with --file, or from
stdin with "-".

Examples:
  evalctl invoke "What is 2+2?"
  evalctl invoke -p databricks:chat:my-endpoint --logprobs "Hello"
  evalctl invoke --var city=Paris -f prompt.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readPrompt(cmd.InOrStdin(), args, promptFile)
			if err != nil {
				return err
			}

			callVars, err := parseVars(vars)
			if err != nil {
				return err
			}

			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			stop := serveMetrics(cfg.Observability.Metrics)
			defer stop()

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			reg, err := registry.New(ctx, cfg)
			if err != nil {
				return err
			}
			defer reg.Close()

			p, err := reg.Get(providerID)
			if err != nil {
				return err
			}

			res, err := p.Invoke(ctx, text, &provider.CallContext{Vars: callVars}, &provider.InvokeOptions{IncludeLogProbs: logProbs})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(res); err != nil {
				return err
			}
			if res.IsError() {
				return fmt.Errorf("invocation failed")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&providerID, "provider", "p", "databricks:"+databricks.DefaultGradingModel, "provider id")
	cmd.Flags().StringArrayVar(&vars, "var", nil, "template variable as key=value (repeatable)")
	cmd.Flags().BoolVar(&logProbs, "logprobs", false, "request per-token log probabilities")
	cmd.Flags().StringVarP(&promptFile, "file", "f", "", "read the prompt from a file")

	return cmd
}

func readPrompt(stdin io.Reader, args []string, file string) (string, error) {
	switch {
	case file != "" && len(args) > 0:
		return "", fmt.Errorf("pass either a prompt argument or --file, not both")
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading prompt file: %w", err)
		}
		return string(data), nil
	case len(args) == 1 && args[0] == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading prompt from stdin: %w", err)
		}
		return string(data), nil
	case len(args) == 1:
		return args[0], nil
	default:
		return "", fmt.Errorf("a prompt is required")
	}
}

func parseVars(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --var %q: expected key=value", pair)
		}
		out[k] = v
	}
	return out, nil
}
