package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/spotylog/internal/shared"
	"github.com/desertthunder/spotylog/internal/ui"
	"github.com/urfave/cli/v3"
)

// AuthLogin runs the authorization code flow and stores the access token in the config file.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	acquirer, err := r.acquirer()
	if err != nil {
		return err
	}

	token, err := acquirer.AccessToken(ctx)
	if err != nil {
		return err
	}

	r.config.Credentials.Spotify.AccessToken = token.AccessToken
	r.spotify = nil

	if cmd.Bool("no-save") {
		r.writePlain("%s Authorization successful\n", ui.Styles.OK("✓"))
		return r.writePlain("Access token: %s\n", token.AccessToken)
	}

	path := r.configPathOrDefault()
	if err := shared.SaveConfig(path, r.config); err != nil {
		return fmt.Errorf("failed to save access token: %w", err)
	}
	r.logger.Info("access token saved", "path", path, "expires", token.Expiry)

	r.writePlain("%s Authorization successful\n", ui.Styles.OK("✓"))
	r.writePlain("Access token saved to %s\n", path)
	if !token.Expiry.IsZero() {
		r.writePlain("Expires: %s\n", token.Expiry.Local().Format("2006-01-02 15:04:05"))
	}
	return nil
}

// AuthURL prints the authorization URL for a fresh state value.
func (r *Runner) AuthURL(ctx context.Context, cmd *cli.Command) error {
	acquirer, err := r.acquirer()
	if err != nil {
		return err
	}

	return r.writePlain("%s\n", acquirer.AuthorizationURL(shared.GenerateState()))
}

// WhoAmI shows the profile tied to the stored access token.
func (r *Runner) WhoAmI(ctx context.Context, cmd *cli.Command) error {
	client, err := r.client()
	if err != nil {
		return err
	}

	user, err := client.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch current user: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(user, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Spotify Account")
	r.writePlain("Name:      %s\n", user.DisplayName)
	r.writePlain("ID:        %s\n", user.ID)
	if user.Email != "" {
		r.writePlain("Email:     %s\n", user.Email)
	}
	if user.Country != "" {
		r.writePlain("Country:   %s\n", user.Country)
	}
	r.writePlain("Plan:      %s\n", user.Product)
	r.writePlain("Followers: %d\n", user.Followers.Total)
	return nil
}
