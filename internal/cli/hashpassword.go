package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"menuboard/internal/auth"
)

// NewHashPasswordCommand creates the hash-password command. Operators use
// it to produce a bcrypt hash they can paste into admin_users.json by hand
// before hitting the users reload endpoint.
func NewHashPasswordCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print the bcrypt hash of a password",
		Long: `Hash a password for manual admin account management.

The printed hash goes into the password_hash field of an entry in
admin_users.json; the running service picks it up after a POST to
/api/users/reload.

Example:
  menuboard hash-password 's3cret'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := auth.HashPassword(args[0])
			if err != nil {
				return WrapExitError(ExitFailure, "failed to hash password", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}
