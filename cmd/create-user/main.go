// CLI tool to create a user with a bcrypt-hashed password, an empty body
// profile and an all-rest training schedule.
// Usage: go run ./cmd/create-user [-unit kg|lbs]
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	unit := flag.String("unit", "kg", "weight unit preference for the new profile (kg or lbs)")
	flag.Parse()
	if *unit != "kg" && *unit != "lbs" {
		fmt.Fprintln(os.Stderr, "-unit must be kg or lbs")
		os.Exit(2)
	}

	_ = godotenv.Load()

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, os.Getenv("DB_URL"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close(ctx)

	reader := bufio.NewReader(os.Stdin)
	username := prompt(reader, "Username: ")
	email := prompt(reader, "Email: ")
	password := prompt(reader, "Password: ")
	if username == "" || password == "" {
		fmt.Fprintln(os.Stderr, "username and password are required")
		os.Exit(1)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error hashing password: %v\n", err)
		os.Exit(1)
	}
	authToken := uuid.New().String()

	userID, err := createUser(ctx, conn, username, email, string(hash), authToken, *unit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating user: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nUser created successfully!\n")
	fmt.Printf("  ID:         %d\n", userID)
	fmt.Printf("  Username:   %s\n", username)
	fmt.Printf("  Auth Token: %s\n", authToken)
}

func prompt(r *bufio.Reader, label string) string {
	fmt.Print(label)
	s, _ := r.ReadString('\n')
	return strings.TrimSpace(s)
}

// createUser inserts the user, profile and schedule rows in one transaction.
func createUser(ctx context.Context, conn *pgx.Conn, username, email, hash, token, unit string) (int, error) {
	tx, err := conn.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var userID int
	err = tx.QueryRow(ctx,
		`INSERT INTO users (username, email, password, auth_token)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		username, email, hash, token,
	).Scan(&userID)
	if err != nil {
		return 0, fmt.Errorf("insert user: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO user_profiles (user_id, weight_unit) VALUES ($1, $2)`, userID, unit); err != nil {
		return 0, fmt.Errorf("insert profile: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO training_schedule (user_id, day_index)
		 SELECT $1, d FROM generate_series(0, 6) AS d`, userID); err != nil {
		return 0, fmt.Errorf("insert training schedule: %w", err)
	}

	return userID, tx.Commit(ctx)
}
