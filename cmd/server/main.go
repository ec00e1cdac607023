package main

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"log"
	"net/http"
	"os"

	_ "modernc.org/sqlite"

	emailPkg "gatekeeper/internal/adapters/email"
	web "gatekeeper/internal/adapters/http"
	"gatekeeper/internal/adapters/storage"
	accountStore "gatekeeper/internal/adapters/storage/account"
	"gatekeeper/internal/application/token"
	"gatekeeper/internal/domain/password"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Initialize database with WAL mode, foreign keys, and busy timeout
	dbPath := envOrDefault("GATEKEEPER_DB", "gatekeeper.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}
	if err := storage.InitDB(db); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	log.Println("Database initialized successfully!")

	// Credential hasher with default argon2id parameters
	hasher, err := password.NewHasher(password.DefaultConfig())
	if err != nil {
		log.Fatalf("failed to configure hasher: %v", err)
	}

	// Token service: one signing secret per token kind
	tokens, err := token.NewService(token.Config{
		ConfirmSecret: loadSecret("GATEKEEPER_CONFIRM_SECRET"),
		ResetSecret:   loadSecret("GATEKEEPER_RESET_SECRET"),
		AccessSecret:  loadSecret("GATEKEEPER_ACCESS_SECRET"),
		RefreshSecret: loadSecret("GATEKEEPER_REFRESH_SECRET"),
	})
	if err != nil {
		log.Fatalf("failed to configure token service: %v", err)
	}

	// Configure email sender
	baseURL := envOrDefault("GATEKEEPER_BASE_URL", "http://localhost:8080")
	emailFrom := envOrDefault("GATEKEEPER_RESEND_FROM", "Gatekeeper <noreply@localhost>")
	emailReply := envOrDefault("GATEKEEPER_REPLY_TO", "")
	var sender emailPkg.Sender
	if resendKey := os.Getenv("GATEKEEPER_RESEND_KEY"); resendKey != "" {
		sender = emailPkg.NewResendSender(resendKey, emailFrom)
		log.Println("Email sender configured (Resend)")
	} else {
		sender = emailPkg.NewNoopSender()
		if os.Getenv("GATEKEEPER_ENV") == "production" {
			log.Println("WARNING: GATEKEEPER_RESEND_KEY is not set — email delivery is DISABLED in production")
		} else {
			log.Println("Email sender configured (noop — set GATEKEEPER_RESEND_KEY for real delivery)")
		}
	}
	notifier := emailPkg.NewNotifier(sender, emailFrom, emailReply, baseURL)

	api := web.NewAPI(accountStore.NewSQLiteStore(db), hasher, tokens, notifier)
	mux := web.NewMux(api)

	addr := envOrDefault("GATEKEEPER_ADDR", ":8080")
	log.Printf("Gatekeeper %s starting on %s (env=%s)", version, addr, envOrDefault("GATEKEEPER_ENV", "development"))

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// loadSecret reads a hex-encoded signing secret (32 bytes) from the
// environment. In production the secret MUST be set. In development a random
// secret is generated per startup, so tokens do not survive a restart.
func loadSecret(key string) []byte {
	if keyHex := os.Getenv(key); keyHex != "" {
		secret, err := hex.DecodeString(keyHex)
		if err != nil || len(secret) != 32 {
			log.Fatalf("%s must be 64 hex characters (32 bytes)", key)
		}
		return secret
	}
	if os.Getenv("GATEKEEPER_ENV") == "production" {
		log.Fatalf("%s is required in production", key)
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		log.Fatalf("failed to generate secret for %s: %v", key, err)
	}
	log.Printf("WARNING: using random %s (tokens won't survive restart). Set it for production.", key)
	return secret
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
