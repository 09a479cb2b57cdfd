package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/terraincognita07/kpitracker/internal/security"
	"golang.org/x/crypto/bcrypt"
)

func newWebhookKeyCommand(opts *options) *cobra.Command {
	var (
		length   int
		existing bool
	)
	cmd := &cobra.Command{
		Use:   "webhook-key",
		Short: "Generate a softphone webhook key and its WEBHOOK_API_KEY_HASH value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key := ""
			if existing {
				printf(cmd.ErrOrStderr(), "Webhook key: ")
				raw, err := readSecretNoEcho(opts.stdin)
				printf(cmd.ErrOrStderr(), "\n")
				if err != nil {
					return fmt.Errorf("read key: %w", err)
				}
				key = strings.TrimSpace(string(raw))
				if key == "" {
					return errors.New("key is required")
				}
			}
			return runWebhookKeyCommand(cmd.OutOrStdout(), key, length)
		},
	}
	cmd.Flags().IntVar(&length, "length", 32, "Length of a generated key")
	cmd.Flags().BoolVar(&existing, "existing", false, "Hash a key typed on stdin instead of generating one")
	return cmd
}

func runWebhookKeyCommand(out io.Writer, key string, length int) error {
	generated := key == ""
	if generated {
		var err error
		key, err = security.NewAPIKey(length)
		if err != nil {
			return fmt.Errorf("generate key: %w", err)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash key: %w", err)
	}

	if generated {
		printf(out, "Webhook key: %s\n", key)
		printf(out, "Send it in the X-API-Key header or the api_key field.\n")
	}
	printf(out, "WEBHOOK_API_KEY_HASH='%s'\n", hash)
	return nil
}
