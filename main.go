package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Set properties of the predefined Logger: a module prefix and no
	// time/file flags — the host platform timestamps stdout already.
	log.SetPrefix("pd/plant-diary-go-api: ")
	log.SetFlags(0)

	// .env is optional in deployed environments where DB_URL etc. come
	// from the platform.
	if err := godotenv.Load(); err != nil {
		log.Printf("[main] no .env loaded: %v", err)
	}

	h := &Handler{
		db:            getDBPool(),
		openAIBaseURL: "https://api.openai.com",
	}
	h.store = NewSheetStore(h.db)

	router := gin.Default()
	router.SetTrustedProxies(nil)
	h.registerRoutes(router)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	router.Run(":" + port)
}
