package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/NightSight1044/legalCRM1/config"
	"github.com/NightSight1044/legalCRM1/db"
	"github.com/NightSight1044/legalCRM1/logger"
	"github.com/NightSight1044/legalCRM1/models"
	"github.com/NightSight1044/legalCRM1/services"
	"github.com/NightSight1044/legalCRM1/services/jobs"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openDB loads the config, installs the logger and opens the migrated
// database. The caller must call the returned cleanup.
func openDB() (*config.Config, func(), error) {
	cfg := config.Load()
	_, flush, err := logger.Install(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing logger: %w", err)
	}
	if err := db.Initialize(cfg); err != nil {
		flush()
		return nil, nil, err
	}
	if err := db.AutoMigrate(); err != nil {
		db.Close()
		flush()
		return nil, nil, err
	}
	return cfg, func() {
		db.Close()
		flush()
	}, nil
}

// readPassword prompts without echo. Outside a terminal the password is
// read from ADMIN_PASSWORD.
func readPassword(prompt string) (string, error) {
	if !term.IsTerminal(int(syscall.Stdin)) {
		if pw := os.Getenv("ADMIN_PASSWORD"); pw != "" {
			return pw, nil
		}
		return "", errors.New("stdin is not a terminal and ADMIN_PASSWORD is not set")
	}

	fmt.Print(prompt)
	first, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	fmt.Print("Confirm password: ")
	second, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}

func printValidation(err error) error {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		return fmt.Errorf("invalid %s: %s", verr.Field, verr.Reason)
	}
	return err
}

var rootCmd = &cobra.Command{
	Use:          "admin",
	Short:        "Administration tasks for the practice database",
	SilenceUsage: true,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, cleanup, err := openDB()
		if err != nil {
			return err
		}
		defer cleanup()
		fmt.Println("Migrations applied")
		return nil
	},
}

var createFirmCmd = &cobra.Command{
	Use:   "create-firm",
	Short: "Create a firm and its first administrator",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		country, _ := cmd.Flags().GetString("country")
		timezone, _ := cmd.Flags().GetString("timezone")
		billingEmail, _ := cmd.Flags().GetString("billing-email")
		adminName, _ := cmd.Flags().GetString("admin-name")
		adminEmail, _ := cmd.Flags().GetString("admin-email")

		password, err := readPassword("Admin password: ")
		if err != nil {
			return err
		}

		_, cleanup, err := openDB()
		if err != nil {
			return err
		}
		defer cleanup()

		firm, admin, err := services.CreateFirmWithAdmin(cmd.Context(), db.DB,
			services.FirmInput{Name: name, Country: country, Timezone: timezone, BillingEmail: billingEmail},
			services.ProfileInput{FullName: adminName, Email: adminEmail, Password: password},
		)
		if err != nil {
			return printValidation(err)
		}

		fmt.Printf("Firm created: %s (slug %s, id %s)\n", firm.Name, firm.Slug, firm.ID)
		fmt.Printf("Admin: %s <%s>\n", admin.FullName, admin.Email)
		return nil
	},
}

var createProfileCmd = &cobra.Command{
	Use:   "create-profile",
	Short: "Add a profile to an existing firm, or leave it in onboarding",
	RunE: func(cmd *cobra.Command, args []string) error {
		slug, _ := cmd.Flags().GetString("firm")
		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("email")
		role, _ := cmd.Flags().GetString("role")

		password, err := readPassword("Password: ")
		if err != nil {
			return err
		}

		_, cleanup, err := openDB()
		if err != nil {
			return err
		}
		defer cleanup()

		firmID := ""
		if slug != "" {
			var firm models.Firm
			if err := db.DB.WithContext(cmd.Context()).Where("slug = ?", slug).First(&firm).Error; err != nil {
				return fmt.Errorf("firm %q not found: %w", slug, err)
			}
			firmID = firm.ID
		}

		profile, err := services.CreateProfile(cmd.Context(), db.DB, firmID,
			services.ProfileInput{FullName: name, Email: email, Password: password, Role: role})
		if err != nil {
			return printValidation(err)
		}

		fmt.Printf("Profile created: %s <%s> role=%s\n", profile.FullName, profile.Email, profile.Role)
		if firmID == "" {
			fmt.Println("The profile has no firm yet and will be asked to create one after login")
		}
		return nil
	},
}

var listFirmsCmd = &cobra.Command{
	Use:   "list-firms",
	Short: "List firms and their member counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, cleanup, err := openDB()
		if err != nil {
			return err
		}
		defer cleanup()

		var firms []models.Firm
		if err := db.DB.WithContext(cmd.Context()).Preload("Profiles").Order("name").Find(&firms).Error; err != nil {
			return fmt.Errorf("listing firms: %w", err)
		}

		w := bufio.NewWriter(os.Stdout)
		defer w.Flush()
		fmt.Fprintf(w, "%-36s  %-30s  %-20s  %s\n", "ID", "SLUG", "TIMEZONE", "MEMBERS")
		for _, f := range firms {
			fmt.Fprintf(w, "%-36s  %-30s  %-20s  %d\n", f.ID, f.Slug, f.Timezone, len(f.Profiles))
		}
		return nil
	},
}

var sendRemindersCmd = &cobra.Command{
	Use:   "send-reminders",
	Short: "Run the event reminder job once",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, cleanup, err := openDB()
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()
		sent, err := jobs.SendEventReminders(ctx, db.DB, cfg, time.Now().UTC(), nil)
		if err != nil {
			return err
		}
		fmt.Printf("Reminders processed: %d\n", sent)
		return nil
	},
}

func init() {
	createFirmCmd.Flags().String("name", "", "Firm name")
	createFirmCmd.Flags().String("country", "", "Country")
	createFirmCmd.Flags().String("timezone", "UTC", "IANA timezone, e.g. America/Mexico_City")
	createFirmCmd.Flags().String("billing-email", "", "Billing contact email")
	createFirmCmd.Flags().String("admin-name", "", "Administrator full name")
	createFirmCmd.Flags().String("admin-email", "", "Administrator email")
	_ = createFirmCmd.MarkFlagRequired("name")
	_ = createFirmCmd.MarkFlagRequired("admin-name")
	_ = createFirmCmd.MarkFlagRequired("admin-email")

	createProfileCmd.Flags().String("firm", "", "Firm slug (empty leaves the profile in onboarding)")
	createProfileCmd.Flags().String("name", "", "Full name")
	createProfileCmd.Flags().String("email", "", "Email")
	createProfileCmd.Flags().String("role", models.RoleStaff, "Role: "+strings.Join([]string{models.RoleAdmin, models.RoleLawyer, models.RoleStaff}, ", "))
	_ = createProfileCmd.MarkFlagRequired("name")
	_ = createProfileCmd.MarkFlagRequired("email")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(createFirmCmd)
	rootCmd.AddCommand(createProfileCmd)
	rootCmd.AddCommand(listFirmsCmd)
	rootCmd.AddCommand(sendRemindersCmd)
}
