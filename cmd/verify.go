package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/calendar-assistant/internal/config"
	"github.com/teemow/calendar-assistant/internal/google"
)

// setupCheck is one line of the verify report.
type setupCheck struct {
	name string
	// run returns a short detail shown after a passing check.
	run func(ctx context.Context) (string, error)
	// hint is printed under a failing check.
	hint string
}

func newVerifyCmd() *cobra.Command {
	var skipInference bool

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check that the local setup is complete",
		Long: `Check the pieces the assistant needs and print a summary:

  - the OAuth client credentials file exists and parses
  - an OAuth token has been stored by 'calendar-assistant auth'
  - the local inference runtime is reachable and has the configured model

Exits non-zero if any check fails.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, cancel := signalContext(cmd)
			defer cancel()

			checks := []setupCheck{
				credentialsCheck(cfg.CredentialsFile),
				tokenCheck(cfg.TokenFile),
			}
			if !skipInference {
				client := &http.Client{Timeout: 5 * time.Second}
				checks = append(checks, inferenceCheck(client, cfg.InferenceURL, cfg.InferenceModel))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, strings.Repeat("=", 60))
			fmt.Fprintln(out, "Calendar Assistant Setup Verification")
			fmt.Fprintln(out, strings.Repeat("=", 60))
			fmt.Fprintf(out, "Build: %s\n\n", buildSummary())

			if !runChecks(ctx, out, checks) {
				fmt.Fprintln(out, "❌ Some issues need fixing")
				return errors.New("setup verification failed")
			}
			fmt.Fprintln(out, "✅ Everything is ready!")
			fmt.Fprintln(out, "\nTry it:")
			fmt.Fprintln(out, "  calendar-assistant call get_today_events")
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipInference, "skip-inference", false, "Do not check the local inference runtime")
	cmd.Flags().String("inference-url", "http://localhost:11434", "Base URL of the local inference runtime")
	cmd.Flags().String("inference-model", "llama3.2:3b", "Model that must be available on the inference runtime")
	bindFlags(cmd.Flags(), map[string]string{
		config.KeyInferenceURL:   "inference-url",
		config.KeyInferenceModel: "inference-model",
	})

	return cmd
}

// runChecks runs every check, printing a ✅ or ❌ line for each, and
// reports whether all of them passed.
func runChecks(ctx context.Context, w io.Writer, checks []setupCheck) bool {
	ok := true
	for _, c := range checks {
		detail, err := c.run(ctx)
		if err != nil {
			ok = false
			fmt.Fprintf(w, "❌ %s: %v\n", c.name, err)
			if c.hint != "" {
				fmt.Fprintf(w, "   %s\n", c.hint)
			}
			continue
		}
		if detail != "" {
			fmt.Fprintf(w, "✅ %s (%s)\n", c.name, detail)
		} else {
			fmt.Fprintf(w, "✅ %s\n", c.name)
		}
	}
	fmt.Fprintln(w)
	return ok
}

func credentialsCheck(path string) setupCheck {
	return setupCheck{
		name: "OAuth client credentials",
		hint: "Download a Desktop app OAuth client from the Google Cloud console",
		run: func(context.Context) (string, error) {
			if _, err := google.LoadOAuthConfig(path); err != nil {
				return "", err
			}
			return path, nil
		},
	}
}

func tokenCheck(path string) setupCheck {
	return setupCheck{
		name: "OAuth token",
		hint: "Run: calendar-assistant auth",
		run: func(context.Context) (string, error) {
			tok, err := google.ReadToken(path)
			if err != nil {
				return "", err
			}
			if tok.RefreshToken == "" && !tok.Valid() {
				return "", fmt.Errorf("token in %s is expired and has no refresh token", path)
			}
			return path, nil
		},
	}
}

// ollamaTags is the subset of the /api/tags response we read.
type ollamaTags struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

func inferenceCheck(client *http.Client, baseURL, model string) setupCheck {
	return setupCheck{
		name: "Inference runtime",
		hint: fmt.Sprintf("Run: ollama serve && ollama pull %s", model),
		run: func(ctx context.Context) (string, error) {
			url := strings.TrimRight(baseURL, "/") + "/api/tags"
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return "", err
			}

			resp, err := client.Do(req)
			if err != nil {
				return "", fmt.Errorf("not reachable at %s", baseURL)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return "", fmt.Errorf("unexpected status %s from %s", resp.Status, url)
			}

			var tags ollamaTags
			if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
				return "", fmt.Errorf("failed to decode model list: %w", err)
			}
			for _, m := range tags.Models {
				if m.Name == model || m.Name == model+":latest" {
					return model, nil
				}
			}
			return "", fmt.Errorf("model %s not found", model)
		},
	}
}

// buildSummary describes the running binary in place of a dependency check.
func buildSummary() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return fmt.Sprintf("calendar-assistant %s", version)
	}
	return fmt.Sprintf("calendar-assistant %s, %s, %d modules", version, info.GoVersion, len(info.Deps))
}
