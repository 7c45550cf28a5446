package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yoeldevsoft25/LA-CAJA-sub007/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create this device's identity profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		storeID, _ := cmd.Flags().GetString("store")
		backendURL, _ := cmd.Flags().GetString("backend-url")
		natsURL, _ := cmd.Flags().GetString("nats-url")
		force, _ := cmd.Flags().GetBool("force")

		existing, err := config.LoadProfile()
		if err != nil {
			return fmt.Errorf("load profile: %w", err)
		}
		if existing.DeviceID != "" && !force {
			return fmt.Errorf("device already initialized as %s (store %s); use --force to overwrite",
				existing.DeviceID, existing.StoreID)
		}

		if storeID == "" {
			storeID = uuid.NewString()
		}
		profile := config.Profile{
			StoreID:    storeID,
			DeviceID:   uuid.NewString(),
			BackendURL: backendURL,
			NATSURL:    natsURL,
		}
		if err := config.SaveProfile(profile); err != nil {
			return fmt.Errorf("save profile: %w", err)
		}

		path, _ := config.ProfilePath()
		fmt.Printf("Store ID:  %s\n", profile.StoreID)
		fmt.Printf("Device ID: %s\n", profile.DeviceID)
		fmt.Printf("Profile:   %s\n", path)
		return nil
	},
}

func init() {
	initCmd.Flags().String("store", "", "store ID to join (default: mint a new one)")
	initCmd.Flags().String("backend-url", "", "sync push endpoint")
	initCmd.Flags().String("nats-url", "", "local event bus URL")
	initCmd.Flags().Bool("force", false, "overwrite an existing profile")
}
