// Command imapcli demonstrates the kestrelmail/imap client against a real
// server: connect, log in, list mailboxes, select INBOX, print a summary.
// It is demonstration code, not part of the library.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/kestrelmail/imap/client"
)

func main() {
	host := os.Getenv("HOST")
	email := os.Getenv("EMAIL")
	pass := os.Getenv("PASS")
	if host == "" || email == "" || pass == "" {
		log.Fatal("HOST, EMAIL, and PASS must be set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c, err := client.DialTLS(ctx, host)
	if err != nil {
		log.Fatalf("dial: %v", err)
	}
	defer func() { _ = c.Close() }()

	fmt.Printf("connected to %s, state=%s\n", host, c.State())
	fmt.Printf("capabilities: %s\n", c.Capabilities())

	if err := c.Login(email, pass); err != nil {
		log.Fatalf("login: %v", err)
	}
	fmt.Println("logged in")

	mailboxes, err := c.List("", "*")
	if err != nil {
		log.Fatalf("list: %v", err)
	}
	fmt.Printf("\nmailboxes (%d):\n", len(mailboxes))
	for _, mbox := range mailboxes {
		fmt.Printf("  %s (delim=%q, attrs=%v)\n", mbox.Name, mbox.Delim, mbox.Attrs)
	}

	status, err := c.Select("INBOX")
	if err != nil {
		log.Fatalf("select: %v", err)
	}
	fmt.Printf("\nINBOX: %d messages, %d recent, uidnext=%d, readonly=%v\n",
		status.NumMessages, status.NumRecent, status.UIDNext, status.ReadOnly)

	if err := c.Logout(); err != nil {
		log.Fatalf("logout: %v", err)
	}
	fmt.Println("\nlogged out")
}
