package worker

import (
	"github.com/spec-kit/customer-service/internal/service"
)

// StartChangeFeedWorker registers change-feed handlers.
func StartChangeFeedWorker(changeFeed *service.ChangeFeedService) {
	if changeFeed == nil {
		return
	}
	changeFeed.RegisterHandlers()
}
