// Command admincli is a small operator tool: it registers users against a
// running server and generates signing secrets.
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"assistant-service/internal/common"
)

const defaultServerURL = "http://localhost:8080"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "register":
		if err := register(serverURL()); err != nil {
			fmt.Println(err.Error())
			os.Exit(1)
		}
	case "gen-secret":
		if err := genSecret(); err != nil {
			fmt.Println(err.Error())
			os.Exit(1)
		}
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("usage: admincli <register|gen-secret>")
	fmt.Println("  ASSISTANT_URL overrides the server address (default " + defaultServerURL + ")")
}

func serverURL() string {
	if v := os.Getenv("ASSISTANT_URL"); v != "" {
		return strings.TrimRight(v, "/")
	}
	return defaultServerURL
}

func getSimpleText(reader *bufio.Reader, prompt string) (string, error) {
	fmt.Println(prompt)
	text, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func getPassword() ([]byte, error) {
	fmt.Println("Enter password")
	return term.ReadPassword(int(os.Stdin.Fd()))
}

func register(baseURL string) error {
	reader := bufio.NewReader(os.Stdin)

	username, err := getSimpleText(reader, "Enter user name")
	if err != nil {
		return err
	}

	email, err := getSimpleText(reader, "Enter email")
	if err != nil {
		return err
	}

	password, err := getPassword()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	body, err := json.Marshal(map[string]string{
		"username": username,
		"email":    email,
		"password": string(password),
	})
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Post(baseURL+"/assistant/register", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("registration failed: %s %s", resp.Status, strings.TrimSpace(string(raw)))
	}

	fmt.Println("Success!")
	return nil
}

// genSecret prints a fresh URL-safe secret suitable for SECRET_KEY.
func genSecret() error {
	secret, err := common.MakeRandURLSafeString(64)
	if err != nil {
		return err
	}
	fmt.Println(secret)
	return nil
}
