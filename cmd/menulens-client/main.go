// menulens-client is a small CLI that exercises the MenuLens SDK end to
// end against a running server: it scans a menu photo, lists history,
// and manages favorites, handling the session lifecycle implicitly.
package main

import (
	"context"
	"encoding/base64"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/menulens/menulens/pkg/client"
)

func main() {
	server := flag.String("server", "http://localhost:8080", "MenuLens server base URL")
	origin := flag.String("origin", "http://localhost:5173", "Origin to present (must be allow-listed)")
	lang := flag.String("lang", "English", "Target language for scans")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
	}

	c := client.New(*server, *origin)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	switch args[0] {
	case "scan":
		if len(args) != 2 {
			usage()
		}
		scan(ctx, c, args[1], *lang)
	case "history":
		history(ctx, c)
	case "delete-scan":
		if len(args) != 2 {
			usage()
		}
		if err := c.DeleteScan(ctx, args[1]); err != nil {
			log.Fatalf("delete-scan failed: %v", err)
		}
		fmt.Println("deleted")
	case "favorite":
		if len(args) != 3 {
			usage()
		}
		favorite(ctx, c, args[1], args[2])
	case "favorites":
		favorites(ctx, c)
	case "unfavorite":
		if len(args) != 2 {
			usage()
		}
		if err := c.Unfavorite(ctx, args[1]); err != nil {
			log.Fatalf("unfavorite failed: %v", err)
		}
		fmt.Println("removed")
	default:
		usage()
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: menulens-client [flags] <command>

commands:
  scan <image-file>            scan a menu photo
  history                      list this session's scans
  delete-scan <scan-id>        delete a scan
  favorite <scan-id> <index>   favorite one item of a scan
  favorites                    list favorites
  unfavorite <favorite-id>     remove a favorite`)
	flag.PrintDefaults()
	os.Exit(2)
}

func scan(ctx context.Context, c *client.Client, path string, lang string) {
	raw, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("failed to read image: %v", err)
	}

	result, err := c.Scan(ctx, base64.StdEncoding.EncodeToString(raw), lang)
	if err != nil {
		log.Fatalf("scan failed: %v", err)
	}

	fmt.Printf("scan %s (%d items)\n", result.ID, len(result.Items))
	for i, item := range result.Items {
		printItem(i, item.Original, item.Reading, item.Translation, item.Price)
	}
}

func history(ctx context.Context, c *client.Client) {
	scans, err := c.History(ctx)
	if err != nil {
		log.Fatalf("history failed: %v", err)
	}

	for _, s := range scans {
		created := time.Unix(s.CreatedAt, 0).Format(time.RFC3339)
		fmt.Printf("%s  %s  %d items\n", s.ID, created, len(s.Items))
	}
}

func favorite(ctx context.Context, c *client.Client, scanID string, indexArg string) {
	index, err := strconv.Atoi(indexArg)
	if err != nil {
		log.Fatalf("index must be a number: %v", err)
	}

	fav, err := c.Favorite(ctx, scanID, index)
	if err != nil {
		log.Fatalf("favorite failed: %v", err)
	}
	fmt.Printf("favorite %s: %s (%s)\n", fav.ID, fav.Item.Original, fav.Item.Translation)
}

func favorites(ctx context.Context, c *client.Client) {
	favs, err := c.Favorites(ctx)
	if err != nil {
		log.Fatalf("favorites failed: %v", err)
	}

	for i, fav := range favs {
		printItem(i, fav.Item.Original, fav.Item.Reading, fav.Item.Translation, fav.Item.Price)
	}
}

func printItem(i int, original, reading, translation, price string) {
	line := fmt.Sprintf("  [%d] %s", i, original)
	if reading != "" {
		line += fmt.Sprintf(" (%s)", reading)
	}
	line += " -> " + translation
	if price != "" {
		line += "  " + price
	}
	fmt.Println(line)
}
