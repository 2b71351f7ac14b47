package main

import (
	"context"
	"os"

	_ "github.com/joho/godotenv/autoload"

	"github.com/Zachkp/folio/cmd"
)

func main() {
	if err := cmd.NewRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
