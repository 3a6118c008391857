package jobs

import (
	"log"
	"time"

	"home-services-server/services"
)

// TokenCleanupJob periodically purges expired and revoked refresh tokens
type TokenCleanupJob struct {
	interval time.Duration
	stopChan chan bool
}

// NewTokenCleanupJob creates a new token cleanup job
func NewTokenCleanupJob() *TokenCleanupJob {
	return &TokenCleanupJob{
		interval: 1 * time.Hour,
		stopChan: make(chan bool),
	}
}

// Start begins the cleanup loop
func (j *TokenCleanupJob) Start() {
	go j.run()
	log.Println("🚀 Token cleanup job started")
}

// Stop stops the cleanup loop
func (j *TokenCleanupJob) Stop() {
	j.stopChan <- true
	log.Println("🛑 Token cleanup job stopped")
}

func (j *TokenCleanupJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.cleanup()
		case <-j.stopChan:
			return
		}
	}
}

func (j *TokenCleanupJob) cleanup() {
	if err := services.NewJWTService().CleanupExpiredTokens(); err != nil {
		log.Printf("❌ Token cleanup failed: %v", err)
	}
}
