// Command walloffame serves the Wall of Fame membership API.
package main

import (
	"context"
	"log"

	"github.com/dalemusser/waffle/app"
	"github.com/phearom922/wall-of-fame/internal/app/bootstrap"
)

func main() {
	if err := app.Run(context.Background(), bootstrap.Hooks); err != nil {
		log.Fatal(err)
	}
}
