//go:build ignore

// This script obtains a Google OAuth access token for Cloud Translation,
// for when an API key is not available.
// Run with: go run scripts/get-translate-token.go <credentials.json>
//
// Supports Desktop OAuth credentials. Access tokens expire after about an
// hour; rerun the script to refresh.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	translate "google.golang.org/api/translate/v2"
)

func main() {
	if len(os.Args) < 2 {
		fatalf("Usage: go run scripts/get-translate-token.go <credentials.json>")
	}

	credBytes, err := os.ReadFile(os.Args[1])
	if err != nil {
		fatalf("Error reading credentials: %v", err)
	}

	config, err := google.ConfigFromJSON(credBytes, translate.CloudTranslationScope)
	if err != nil {
		fatalf("Error parsing credentials: %v", err)
	}

	// Loopback redirect on a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		fatalf("Error finding available port: %v", err)
	}
	config.RedirectURL = "http://" + listener.Addr().String()

	codeChan := make(chan string, 1)
	errChan := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			if msg := r.URL.Query().Get("error"); msg != "" {
				errChan <- fmt.Errorf("OAuth error: %s", msg)
				http.Error(w, "Authorization failed: "+msg, http.StatusBadRequest)
			}
			return
		}
		codeChan <- code
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<!DOCTYPE html><html><body style="font-family:system-ui;text-align:center;padding-top:20vh"><h1>Notely is authorized</h1><p>You can close this window.</p></body></html>`)
	})

	server := &http.Server{Handler: mux}
	go func() {
		if err := server.Serve(listener); err != http.ErrServerClosed {
			errChan <- err
		}
	}()
	defer server.Shutdown(context.Background())

	authURL := config.AuthCodeURL("notely", oauth2.AccessTypeOffline)

	fmt.Println("\n=== Google Translation OAuth ===")
	fmt.Printf("\nRedirect URI: %s\n", config.RedirectURL)
	if err := openBrowser(authURL); err != nil {
		fmt.Println("\nOpen this URL in a browser:")
		fmt.Println(authURL)
	}
	fmt.Println("\nWaiting for authorization...")

	var code string
	select {
	case code = <-codeChan:
	case err := <-errChan:
		fatalf("Error: %v", err)
	case <-time.After(5 * time.Minute):
		fatalf("Timeout waiting for authorization")
	}

	token, err := config.Exchange(context.Background(), code)
	if err != nil {
		fatalf("Error exchanging code: %v", err)
	}

	tokenJSON, _ := json.MarshalIndent(token, "", "  ")
	fmt.Println("\nToken JSON:")
	fmt.Println(string(tokenJSON))

	fmt.Printf("\nValid until %s. Export it for the daemon:\n\n", token.Expiry.Local().Format(time.Kitchen))
	fmt.Printf("export NOTELY_TRANSLATION_GOOGLE_ACCESS_TOKEN='%s'\n", token.AccessToken)
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// openBrowser opens a URL in the default browser
func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		if _, err := exec.LookPath("xdg-open"); err != nil {
			return fmt.Errorf("no browser found")
		}
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform")
	}
	return cmd.Start()
}
