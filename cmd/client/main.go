package main

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/dmitrijs2005/userservice/internal/client/cli"
	"github.com/dmitrijs2005/userservice/internal/client/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := cli.NewApp(cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx, commands(os.Args[1:]))

}

// commands returns the positional arguments that name a command.
func commands(args []string) []string {
	for i := 0; i < len(args); i++ {
		if !strings.HasPrefix(args[i], "-") {
			return args[i:i+1]
		}
		if args[i] != "-v" && !strings.Contains(args[i], "=") {
			i++
		}
	}
	return nil
}
