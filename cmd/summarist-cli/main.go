// summarist-cli is the administration companion to the server binary. It
// talks to the same database and config, so user accounts and the local
// catalog can be managed without the HTTP API.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"

	"summarist/internal/auth"
	"summarist/internal/core"
	"summarist/internal/models"
	"summarist/internal/store"
)

var rootCmd = &cobra.Command{
	Use:           "summarist-cli",
	Short:         "Administer a summarist server from the command line",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.AddCommand(userCmd, catalogCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// withStore opens the application and hands the callback a ready store.
func withStore(fn func(st *store.Store) error) error {
	app, err := core.New()
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(store.New(app.DB()))
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user accounts",
}

var userCreateCmd = &cobra.Command{
	Use:   "create <email> <password>",
	Short: "Create a user account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		email, password := args[0], args[1]
		if err := auth.ValidateRegistration(email, password, password); err != nil {
			return err
		}
		passwordHash, err := auth.HashPassword(password)
		if err != nil {
			return err
		}
		displayName := strings.SplitN(email, "@", 2)[0]
		return withStore(func(st *store.Store) error {
			user, err := st.CreateUser(email, displayName, passwordHash, false)
			if err != nil {
				return auth.Classify(err)
			}
			fmt.Printf("Created user %s (uid %s)\n", user.Email, user.UID)
			return nil
		})
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all user accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(st *store.Store) error {
			users, err := st.ListUsers()
			if err != nil {
				return err
			}
			for _, u := range users {
				kind := "member"
				if u.IsGuest {
					kind = "guest"
				}
				sub := "free"
				if u.HasActiveSubscription() {
					sub = u.Subscription.Plan
				}
				fmt.Printf("%d\t%s\t%s\t%s\t%s\n", u.ID, u.UID, u.Email, kind, sub)
			}
			return nil
		})
	},
}

var userDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a user account and its sessions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid user id %q", args[0])
		}
		return withStore(func(st *store.Store) error {
			if err := st.DeleteUser(id); err != nil {
				return err
			}
			fmt.Printf("Deleted user %d\n", id)
			return nil
		})
	},
}

var userResetPasswordCmd = &cobra.Command{
	Use:   "reset-password <email> <new-password>",
	Short: "Set a new password for an account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		email, password := args[0], args[1]
		if err := auth.ValidatePassword(password); err != nil {
			return err
		}
		passwordHash, err := auth.HashPassword(password)
		if err != nil {
			return err
		}
		return withStore(func(st *store.Store) error {
			user, err := st.GetUserByEmail(email)
			if err != nil {
				return auth.Classify(err)
			}
			if err := st.UpdateUserPassword(user.ID, passwordHash); err != nil {
				return err
			}
			fmt.Printf("Password updated for %s\n", email)
			return nil
		})
	},
}

var userGrantCmd = &cobra.Command{
	Use:   "grant <email> <plan>",
	Short: "Activate a subscription plan (basic or premium) for an account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		email, plan := args[0], args[1]
		if plan != models.SubPlanBasic && plan != models.SubPlanPremium {
			return fmt.Errorf("unknown plan %q, want %q or %q", plan, models.SubPlanBasic, models.SubPlanPremium)
		}
		return withStore(func(st *store.Store) error {
			user, err := st.GetUserByEmail(email)
			if err != nil {
				return auth.Classify(err)
			}
			sub := &models.Subscription{Status: models.SubStatusActive, Plan: plan}
			if err := st.UpdateSubscription(user.ID, sub); err != nil {
				return err
			}
			fmt.Printf("Granted %s plan to %s\n", plan, email)
			return nil
		})
	},
}

var userRevokeCmd = &cobra.Command{
	Use:   "revoke <email>",
	Short: "Clear an account's subscription",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		email := args[0]
		return withStore(func(st *store.Store) error {
			user, err := st.GetUserByEmail(email)
			if err != nil {
				return auth.Classify(err)
			}
			if err := st.UpdateSubscription(user.ID, nil); err != nil {
				return err
			}
			fmt.Printf("Revoked subscription for %s\n", email)
			return nil
		})
	},
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect and validate local catalog files",
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check that a catalog file parses and every entry has an id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		books, err := readCatalogFile(args[0])
		if err != nil {
			return err
		}

		var missing int
		byStatus := make(map[string]int)
		for i, b := range books {
			if b.ID == "" {
				fmt.Fprintf(os.Stderr, "entry %d (%q) has no id\n", i, b.Title)
				missing++
				continue
			}
			status := b.Status
			if status == "" {
				status = "suggested"
			}
			byStatus[status]++
		}

		fmt.Printf("%d books", len(books))
		for _, status := range []string{"selected", "recommended", "suggested"} {
			if n := byStatus[status]; n > 0 {
				fmt.Printf(", %d %s", n, status)
			}
		}
		fmt.Println()

		if missing > 0 {
			return fmt.Errorf("%d entries are missing ids", missing)
		}
		return nil
	},
}

var catalogShowCmd = &cobra.Command{
	Use:   "show <file> <book-id>",
	Short: "Print one catalog entry as JSON",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		books, err := readCatalogFile(args[0])
		if err != nil {
			return err
		}
		for _, b := range books {
			if b.ID == args[1] {
				out, err := json.MarshalIndent(b, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(out))
				return nil
			}
		}
		return fmt.Errorf("book %q not found in %s", args[1], args[0])
	},
}

func readCatalogFile(path string) ([]models.Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var books []models.Book
	if err := json.Unmarshal(data, &books); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return books, nil
}

func init() {
	userCmd.AddCommand(userCreateCmd, userListCmd, userDeleteCmd, userResetPasswordCmd, userGrantCmd, userRevokeCmd)
	catalogCmd.AddCommand(catalogValidateCmd, catalogShowCmd)
}
