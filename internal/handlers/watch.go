package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"giftwish/internal/database"
	"giftwish/internal/events"
)

const writeTimeout = 10 * time.Second

// WatchHandler streams a wishlist's activity to a viewer over a websocket.
// The payload is the same JSON as the activity feed; clients use it as a
// refetch signal, not as a data source. Access rules match the public read.
func WatchHandler(logger *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !events.Enabled() {
			http.Error(w, "live updates unavailable", http.StatusServiceUnavailable)
			return
		}

		wishlistID, err := pathUUID(r, "id")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if _, err := database.GetWishlistShared(r.Context(), wishlistID, viewerID(r)); err != nil {
			storeError(w, err)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: []string{"*"}, // Adjust in production
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		ctx := c.CloseRead(r.Context())

		sub := events.Subscribe(ctx, wishlistID)
		defer sub.Close()

		logger.WithFields(logrus.Fields{
			"remote":   r.RemoteAddr,
			"wishlist": wishlistID,
		}).Info("watch connected")

		for {
			select {
			case <-ctx.Done():
				c.Close(websocket.StatusNormalClosure, "")
				return
			case msg, ok := <-sub.Channel():
				if !ok {
					c.Close(websocket.StatusGoingAway, "feed closed")
					return
				}
				writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
				err := c.Write(writeCtx, websocket.MessageText, []byte(msg.Payload))
				cancel()
				if err != nil {
					logger.Debugf("watch write failed: %v", err)
					return
				}
			}
		}
	}
}
