package main

import (
	"crypto/rand"
	"embed"
	"flag"
	"io/fs"
	"log"
	"net/http"
	"os"

	"github.com/AKI-NANA/ebay-price-solver/internal/database"
	"github.com/AKI-NANA/ebay-price-solver/internal/ebay"
	"github.com/AKI-NANA/ebay-price-solver/internal/handlers"
)

//go:embed web/*
var webFS embed.FS

func main() {
	// Command line flags
	port := flag.String("port", "8080", "Server port")
	dbPath := flag.String("db", "./solver.db", "SQLite database path")
	sandbox := flag.Bool("sandbox", true, "Use eBay sandbox environment")
	store := flag.String("store", "", "Account key for this instance (username_env_marketplace)")
	ratePath := flag.String("rates", "./rates.json", "Exchange-rate snapshot file")
	flag.Parse()

	// Get eBay credentials from environment
	clientID := os.Getenv("EBAY_CLIENT_ID")
	clientSecret := os.Getenv("EBAY_CLIENT_SECRET")
	redirectURI := os.Getenv("EBAY_REDIRECT_URI")

	if redirectURI == "" {
		redirectURI = "http://localhost:" + *port + "/api/oauth/callback"
	}

	// Open the database
	db, err := database.Open(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	// Resolve this instance's account
	var account *database.Account
	if *store != "" {
		environment := "sandbox"
		if !*sandbox {
			environment = "production"
		}
		account, err = db.GetOrCreateAccount(*store, *store, environment, "EBAY_US")
		if err != nil {
			log.Fatalf("Failed to resolve account %q: %v", *store, err)
		}
		log.Printf("Using account: %s", account.DisplayName)
	}

	// Create eBay client
	ebayClient := ebay.NewClient(ebay.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURI:  redirectURI,
		Sandbox:      *sandbox,
	})

	// Token encryption is optional; without a key, tokens live only in memory
	encryptionKey, err := database.GetEncryptionKey()
	if err != nil {
		log.Printf("Token persistence disabled: %v", err)
		encryptionKey = nil
	} else if account != nil {
		token, err := db.LoadOAuthToken(account.ID, encryptionKey)
		if err != nil {
			log.Printf("Failed to restore token: %v", err)
		} else if token != nil {
			ebayClient.SetToken(token)
			log.Printf("Restored OAuth token for %s", account.DisplayName)
		}
	}

	sessionStore := database.NewDBSessionStore(db, sessionKey())

	// Create handlers
	h := handlers.NewHandler(db, ebayClient, account, sessionStore, encryptionKey, *ratePath)

	// Set up routes
	mux := http.NewServeMux()

	// API routes
	mux.HandleFunc("/api/health", h.HealthCheck)
	mux.HandleFunc("/api/auth/url", h.GetAuthURL)
	mux.HandleFunc("/api/auth/status", h.GetAuthStatus)
	mux.HandleFunc("/api/oauth/callback", h.OAuthCallback)
	mux.HandleFunc("/api/calculate", h.Calculate)
	mux.HandleFunc("/api/history", h.GetHistory)
	mux.HandleFunc("/api/zones", h.GetZones)
	mux.HandleFunc("/api/categories", h.GetCategories)
	mux.HandleFunc("/api/tariffs", h.GetTariffs)
	mux.HandleFunc("/api/rates", h.GetRates)
	mux.HandleFunc("/api/settings", h.UpdateSetting)
	mux.HandleFunc("/api/offers", h.GetOffers)
	mux.HandleFunc("/api/apply-price", h.ApplyPrice)

	// Serve embedded static files
	webContent, err := fs.Sub(webFS, "web")
	if err != nil {
		log.Fatal(err)
	}
	mux.Handle("/", http.FileServer(http.FS(webContent)))

	// Start server
	addr := ":" + *port
	log.Printf("Starting listing price solver on http://localhost%s", addr)
	log.Printf("Sandbox mode: %v", *sandbox)

	if clientID == "" {
		log.Println("WARNING: EBAY_CLIENT_ID not set - eBay API calls will fail")
	}

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal(err)
	}
}

// sessionKey returns the cookie-signing key from SESSION_KEY, or a random
// per-process key (sessions then reset on restart).
func sessionKey() []byte {
	if v := os.Getenv("SESSION_KEY"); v != "" {
		return []byte(v)
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		log.Fatalf("Failed to generate session key: %v", err)
	}
	return b
}
