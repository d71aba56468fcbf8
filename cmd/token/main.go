package main

import (
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"

	"github.com/codingconcepts/env"
	"github.com/joho/godotenv"
	"github.com/pkg/browser"

	"github.com/SmarabSJJ/ufo-seat-service/internal/seattoken"
)

type Config struct {
	SeatTokenSecret string `env:"SEAT_TOKEN_SECRET" required:"true"`
	FrontendUrl     string `env:"FRONTEND_URL" default:"http://127.0.0.1:3000"`
}

// Issues a seat token from the command line, printing the token and the
// shareable URL to encode into a QR code. With -open, the URL is opened in a
// browser so the result can be eyeballed before printing.
func main() {
	seat := flag.String("seat", "", "seat number, starting with 0 (inside ring) or 1 (outside ring)")
	room := flag.String("room", "100", "room number")
	open := flag.Bool("open", false, "open the generated URL in a browser")
	flag.Parse()

	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		log.Fatalf("error loading .env file: %v", err)
	}
	config := Config{}
	if err := env.Set(&config); err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	trimmedSeat := strings.TrimSpace(*seat)
	if trimmedSeat == "" {
		log.Fatalf("-seat is required")
	}
	if !seattoken.IsValidSeatFormat(trimmedSeat) {
		log.Fatalf("invalid seat %q: seat must start with 0 or 1, followed by digits (e.g. 01, 11, 012, 112)", trimmedSeat)
	}

	codec := seattoken.NewCodec(config.SeatTokenSecret)
	token, err := codec.Generate(trimmedSeat, strings.TrimSpace(*room))
	if err != nil {
		log.Fatalf("error generating token: %v", err)
	}

	shareUrl := fmt.Sprintf("%s/?token=%s", config.FrontendUrl, url.QueryEscape(token))
	fmt.Printf("seat:  %s\n", trimmedSeat)
	fmt.Printf("room:  %s\n", strings.TrimSpace(*room))
	fmt.Printf("token: %s\n", token)
	fmt.Printf("url:   %s\n", shareUrl)

	if *open {
		if err := browser.OpenURL(shareUrl); err != nil {
			log.Fatalf("error opening browser: %v", err)
		}
	}
}
