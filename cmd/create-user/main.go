// CLI tool to create a user with bcrypt-hashed password and a starter diary profile.
// Usage: go run ./cmd/create-user (from the repo root)
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
		os.Exit(1)
	}

	conn, err := pgx.Connect(context.Background(), os.Getenv("DB_URL"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close(context.Background())

	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Username: ")
	username, _ := reader.ReadString('\n')
	username = strings.TrimSpace(username)

	fmt.Print("Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)

	fmt.Print("Password: ")
	password, _ := reader.ReadString('\n')
	password = strings.TrimSpace(password)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error hashing password: %v\n", err)
		os.Exit(1)
	}

	authToken := uuid.New().String()

	var userID int
	err = conn.QueryRow(context.Background(),
		`INSERT INTO users (username, email, password, auth_token)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		username, email, string(hash), authToken,
	).Scan(&userID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating user: %v\n", err)
		os.Exit(1)
	}

	// Starter profile row appended to the profiles sheet; the server's
	// defaultProfile values, so first login and first save agree. The insert
	// and the version bump go in one transaction: any web session holding a
	// pre-insert read of the sheet must conflict rather than overwrite the
	// new row.
	tx, err := conn.Begin(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error starting transaction: %v\n", err)
		os.Exit(1)
	}
	defer tx.Rollback(context.Background())

	_, err = tx.Exec(context.Background(),
		`INSERT INTO profiles (pos, name, height_cm, weight_kg, age, gender, diet_type,
			body_fat_pct, activity, target_weight_kg, target_days, manual_bmr)
		 SELECT COALESCE(MAX(pos) + 1, 0), $1, 170, 60, 30, 'female', 'vegan',
			0, 'light', 55, 90, 0
		 FROM profiles`, username)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating starter profile: %v\n", err)
		os.Exit(1)
	}

	_, err = tx.Exec(context.Background(),
		`UPDATE sheet_versions SET version = version + 1 WHERE sheet = 'profiles'`)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error stamping profiles sheet: %v\n", err)
		os.Exit(1)
	}

	if err := tx.Commit(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error committing starter profile: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nUser created successfully!\n")
	fmt.Printf("  ID:         %d\n", userID)
	fmt.Printf("  Username:   %s\n", username)
	fmt.Printf("  Auth Token: %s\n", authToken)
}
