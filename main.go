// @title LearnHub API
// @version 1.0
// @description Backend of the LearnHub learning platform: courses, quizzes and certificates.

// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"fmt"
	"os"

	"learnhub_backend/internal/cli"

	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
