package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/AI-ML-Modelor/aa/internal/pairing"
	"github.com/AI-ML-Modelor/aa/internal/session"
	"github.com/AI-ML-Modelor/aa/internal/store"
)

func main() {
	sessionFlag := flag.String("session", "", "session name (overrides config default)")
	jsonFlag := flag.Bool("json", false, "output in JSON format")
	flag.Parse()

	sessionName := session.Resolve(*sessionFlag)
	if err := session.ValidateName(sessionName); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	db, err := store.Open(session.DBPath(sessionName))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: cannot open session %q: %v\n", sessionName, err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()
	if _, err := db.Migrate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: migrate: %v\n", err)
		os.Exit(1)
	}

	switch args[0] {
	case "status":
		cmdStatus(db, sessionName, *jsonFlag)
	case "chats":
		cmdChats(db, *jsonFlag)
	case "contacts":
		cmdContacts(db, *jsonFlag)
	case "alias":
		if len(args) < 3 {
			fmt.Fprintln(os.Stderr, "usage: aactl alias <peer-id> <name>")
			os.Exit(1)
		}
		cmdAlias(db, args[1], args[2])
	case "pair-code":
		cmdPairCode(db)
	case "pair-add":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: aactl pair-add <code>")
			os.Exit(1)
		}
		cmdPairAdd(db, args[1])
	case "search":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: aactl search <query>")
			os.Exit(1)
		}
		cmdSearch(db, args[1], *jsonFlag)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: aactl [--session <name>] [--json] <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  status                  Show session summary")
	fmt.Fprintln(os.Stderr, "  chats                   List conversations")
	fmt.Fprintln(os.Stderr, "  contacts                List paired contacts")
	fmt.Fprintln(os.Stderr, "  alias <peer-id> <name>  Set a local nickname for a peer")
	fmt.Fprintln(os.Stderr, "  pair-code               Print your pairing code")
	fmt.Fprintln(os.Stderr, "  pair-add <code>         Add a peer from a pairing code")
	fmt.Fprintln(os.Stderr, "  search <query>          Search messages")
}

func cmdStatus(db *store.DB, sessionName string, jsonOut bool) {
	p, err := db.GetProfile()
	if err != nil {
		fail(err)
	}
	chats, err := db.ChatCount()
	if err != nil {
		fail(err)
	}
	msgs, err := db.MessageCount()
	if err != nil {
		fail(err)
	}

	if jsonOut {
		outputJSON(map[string]any{
			"session":  sessionName,
			"profile":  p,
			"chats":    chats,
			"messages": msgs,
		})
		return
	}
	fmt.Printf("Session:  %s\n", sessionName)
	if p == nil {
		fmt.Println("Profile:  (not created; run aatui to onboard)")
	} else {
		fmt.Printf("Profile:  %s (%s)\n", p.DisplayName, p.UserID)
	}
	fmt.Printf("Chats:    %d\n", chats)
	fmt.Printf("Messages: %d\n", msgs)
}

func cmdChats(db *store.DB, jsonOut bool) {
	p := requireProfile(db)
	chats, err := db.ListChats(p.UserID, 100, 0)
	if err != nil {
		fail(err)
	}
	if jsonOut {
		outputJSON(chats)
		return
	}
	if len(chats) == 0 {
		fmt.Println("No conversations.")
		return
	}
	for _, c := range chats {
		last := c.LastMessageText
		if c.LastMessageDeleted {
			last = "(deleted)"
		}
		ts := ""
		if c.LastMessageAt > 0 {
			ts = time.UnixMilli(c.LastMessageAt).Format("2006-01-02 15:04")
		}
		fmt.Printf("%-24s unread=%-3d %-16s %s\n", c.PeerName, c.UnreadCount, ts, last)
	}
}

func cmdContacts(db *store.DB, jsonOut bool) {
	contacts, err := db.ListContacts()
	if err != nil {
		fail(err)
	}
	if jsonOut {
		outputJSON(contacts)
		return
	}
	if len(contacts) == 0 {
		fmt.Println("No contacts paired.")
		return
	}
	for _, c := range contacts {
		name := c.DisplayName
		if c.LocalAlias != "" {
			name = fmt.Sprintf("%s (alias for %s)", c.LocalAlias, c.DisplayName)
		}
		fmt.Printf("%-40s %s\n", c.UserID, name)
	}
}

func cmdAlias(db *store.DB, peerID, alias string) {
	c, err := db.GetContact(peerID)
	if err != nil {
		fail(err)
	}
	if c == nil {
		fmt.Fprintf(os.Stderr, "error: no contact %q\n", peerID)
		os.Exit(1)
	}
	if err := db.SetLocalAlias(peerID, alias); err != nil {
		fail(err)
	}
	fmt.Printf("Alias for %s set to %q\n", peerID, alias)
}

func cmdPairCode(db *store.DB) {
	p := requireProfile(db)
	code, err := pairing.Encode(pairing.Code{
		UserID:      p.UserID,
		DisplayName: p.DisplayName,
		Avatar:      p.Avatar,
	})
	if err != nil {
		fail(err)
	}
	fmt.Println(code)
}

func cmdPairAdd(db *store.DB, raw string) {
	p := requireProfile(db)
	code, err := pairing.Decode(raw)
	if err != nil {
		fail(err)
	}
	reg := pairing.NewRegistrar(db, nil, nil)
	if err := reg.Register(p.UserID, code); err != nil {
		fail(err)
	}
	fmt.Printf("Paired with %s (%s)\n", code.DisplayName, code.UserID)
}

func cmdSearch(db *store.DB, query string, jsonOut bool) {
	results, err := db.SearchMessages(query, "", 50)
	if err != nil {
		fail(err)
	}
	if jsonOut {
		outputJSON(results)
		return
	}
	if len(results) == 0 {
		fmt.Println("No matches.")
		return
	}
	for _, r := range results {
		ts := time.UnixMilli(r.Message.Timestamp).Format("2006-01-02 15:04")
		fmt.Printf("%-16s %-40s %s\n", ts, r.Message.ChatID, r.Snippet)
	}
}

func requireProfile(db *store.DB) *store.Profile {
	p, err := db.GetProfile()
	if err != nil {
		fail(err)
	}
	if p == nil {
		fmt.Fprintln(os.Stderr, "error: no profile in this session; run aatui to onboard")
		os.Exit(1)
	}
	return p
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

func outputJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "json encode error: %v\n", err)
	}
}
