package cmd

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
)

func newUserCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage studio accounts",
	}
	cmd.AddCommand(newUserCreateCmd(opts))
	return cmd
}

func newUserCreateCmd(opts *rootOptions) *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account that can sign in to the API",
		Long: `Create an account. The password is prompted for when --password is not
given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				prompt := &survey.Password{Message: "Password:"}
				if err := survey.AskOne(prompt, &password, survey.WithValidator(survey.Required)); err != nil {
					return fmt.Errorf("password prompt failed: %w", err)
				}
			}

			a, err := opts.openApp(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.Close()

			u, err := a.Auth.CreateUser(cmd.Context(), name, email, password)
			if err != nil {
				printFieldErrors(cmd.ErrOrStderr(), err)
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Created user %s <%s>", u.Name, u.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "sign-in email")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when empty)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
