// userctl is a read-only inspector for the account store. It opens the
// Badger directory in bypass-lock mode so it can run next to a live
// server, and prints every account as a table.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"

	"chat-engine/repositories"
)

type Config struct {
	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
}

func main() {
	// .env is optional; the environment wins when both define a key.
	_ = godotenv.Load()

	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatal("Config error: ", err)
	}

	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.ERROR))
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	users, err := repositories.NewUserRepository(db).ListUsers()
	if err != nil {
		log.Fatal("Error while listing accounts: ", err)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Username", "Email", "Roles", "Created At"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, user := range users {
		// Short ids keep the table readable; full ids are in the store.
		displayID := user.ID
		if len(displayID) > 8 {
			displayID = displayID[:8]
		}

		table.Append([]string{
			displayID,
			user.Username,
			user.Email,
			fmt.Sprintf("%v", user.Roles),
			user.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	table.Render()
	fmt.Printf("\n%d account(s)\n", len(users))
}
