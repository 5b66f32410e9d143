package main

import (
	"chatroom/domain"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

// Read-only dump of the chat store. Handy when the server is down and you
// want to see what actually got persisted.
func main() {
	dbPath := flag.String("db", "./badger", "Path to badger DB")
	prefix := flag.String("prefix", "msg:", "Prefix to scan (msg:, user:, word:, black:)")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "ID", "Who", "When", "Detail", "Flags"})
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

	count := 0
	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			key := string(item.Key())

			// Secondary indexes hold no payload worth printing.
			if strings.HasPrefix(key, "idx:") {
				continue
			}

			err := item.Value(func(v []byte) error {
				row, ok := toRow(key, v)
				if !ok {
					fmt.Printf("Skipping undecodable key %s\n", key)
					return nil
				}
				table.Append(row)
				count++
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(color.New(color.BgBlack, color.FgGreen).Render(
		fmt.Sprintf(" %d records under %q ", count, *prefix)))
	table.Render()
}

func toRow(key string, value []byte) ([]string, bool) {
	switch {
	case strings.HasPrefix(key, "msg:"):
		var m domain.Message
		if json.Unmarshal(value, &m) != nil {
			return nil, false
		}
		flags := ""
		if m.IsDeleted {
			flags += "deleted "
		}
		if m.IsSensitive {
			flags += "sensitive"
		}
		return []string{key, short(m.ID.String()), m.Nickname, m.At.Format("15:04:05"), truncate(m.Content, 60), flags}, true
	case strings.HasPrefix(key, "user:"):
		var u domain.Identity
		if json.Unmarshal(value, &u) != nil {
			return nil, false
		}
		flags := ""
		if u.IsOnline {
			flags += "online "
		}
		if u.IsBlacklisted {
			flags += "blacklisted"
		}
		return []string{key, short(u.ID.String()), u.Nickname, u.LastActiveAt.Format("15:04:05"), u.IP + " / " + u.Device, flags}, true
	case strings.HasPrefix(key, "word:"):
		var w domain.SensitiveWord
		if json.Unmarshal(value, &w) != nil {
			return nil, false
		}
		return []string{key, short(w.ID.String()), "", w.CreatedAt.Format("15:04:05"), w.Word, ""}, true
	case strings.HasPrefix(key, "black:"):
		var b domain.BlacklistEntry
		if json.Unmarshal(value, &b) != nil {
			return nil, false
		}
		return []string{key, short(b.ID.String()), short(b.UserID.String()), b.CreatedAt.Format("15:04:05"), b.Reason, ""}, true
	default:
		return []string{key, "", "", "", truncate(string(value), 60), ""}, true
	}
}

func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true).
		WithValueLogFileSize(10 * 1024 * 1024)
	return badger.Open(opts)
}
