package main

import (
	"github.com/spf13/cobra"

	"github.com/cpms/cpms-api/internal/core/auth"
	"github.com/cpms/cpms-api/internal/core/ports"
	"github.com/cpms/cpms-api/internal/core/service"
	"github.com/cpms/cpms-api/internal/server"
)

var adminInput ports.RegisterInput

// createAdminCmd is the only way to obtain an ADMIN account.
var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create a user with the ADMIN role",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, log, err := bootstrap(ctx)
		if err != nil {
			return err
		}

		store, err := server.OpenStore(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close(ctx) }()

		codec, err := auth.NewJWTCodec(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, auth.WithIssuer(cfg.Auth.Issuer))
		if err != nil {
			return err
		}
		svc := service.NewAuthService(store.Users, nil, auth.NewBcryptHasher(cfg.Auth.BcryptCost), codec, log)

		user, err := svc.CreateAdmin(ctx, adminInput)
		if err != nil {
			return err
		}
		log.Info().Int64("user_id", user.ID).Str("email", user.Email).Msg("admin created")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(createAdminCmd)
	createAdminCmd.Flags().StringVar(&adminInput.Name, "name", "", "display name")
	createAdminCmd.Flags().StringVar(&adminInput.Email, "email", "", "login email")
	createAdminCmd.Flags().StringVar(&adminInput.Password, "password", "", "initial password")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")
	_ = createAdminCmd.MarkFlagRequired("name")
}
