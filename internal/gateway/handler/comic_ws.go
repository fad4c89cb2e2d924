package handler

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"vulncomics/internal/comic"
	"vulncomics/internal/types"
)

const (
	comicWSWriteWait = 10 * time.Second
	comicWSPongWait  = 60 * time.Second
	comicWSPingEvery = (comicWSPongWait * 9) / 10
	comicWSReadLimit = 1 << 20
)

var comicWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type comicWSInbound struct {
	Type      string           `json:"type"`
	StoryCard *types.StoryCard `json:"storyCard,omitempty"`
}

type comicWSOutbound struct {
	Type      string       `json:"type"`
	ComicHash string       `json:"comicHash,omitempty"`
	Page      int          `json:"page,omitempty"`
	Total     int          `json:"total,omitempty"`
	ImageURL  string       `json:"imageUrl,omitempty"`
	Comic     *types.Comic `json:"comic,omitempty"`
	Code      string       `json:"code,omitempty"`
	Message   string       `json:"message,omitempty"`
}

// HandleGenerateComicWS runs one generation at a time per connection and
// streams page progress. Closing the socket cancels the running generation.
func (h *Handler) HandleGenerateComicWS(w http.ResponseWriter, r *http.Request) {
	conn, err := comicWSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	conn.SetReadLimit(comicWSReadLimit)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(comicWSPongWait)); err != nil {
		h.log.Warn("comic_ws_set_read_deadline_failed", "error", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(comicWSPongWait))
	})

	writeCh := make(chan comicWSOutbound, 32)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(comicWSPingEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case out := <-writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(comicWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(comicWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	var (
		mu      sync.Mutex
		running bool
		jobs    sync.WaitGroup
	)
	defer jobs.Wait()

	for {
		var in comicWSInbound
		if err := conn.ReadJSON(&in); err != nil {
			cancel()
			<-writerDone
			return
		}
		switch strings.ToLower(strings.TrimSpace(in.Type)) {
		case "ping":
			pushComicWS(writeCh, comicWSOutbound{Type: "pong"})
		case "generate":
			if in.StoryCard == nil {
				pushComicWS(writeCh, comicWSOutbound{Type: "error", Code: "INVALID_REQUEST", Message: "storyCard is required"})
				continue
			}
			mu.Lock()
			busy := running
			running = true
			mu.Unlock()
			if busy {
				pushComicWS(writeCh, comicWSOutbound{Type: "error", Code: "INVALID_REQUEST", Message: "a comic is already being generated"})
				continue
			}
			card := *in.StoryCard
			jobs.Add(1)
			go func() {
				defer jobs.Done()
				defer func() {
					mu.Lock()
					running = false
					mu.Unlock()
				}()
				h.generateOverWS(ctx, card, writeCh)
			}()
		case "":
			pushComicWS(writeCh, comicWSOutbound{Type: "error", Code: "INVALID_REQUEST", Message: "type is required"})
		default:
			pushComicWS(writeCh, comicWSOutbound{Type: "error", Code: "INVALID_REQUEST", Message: "unsupported type: " + in.Type})
		}
	}
}

func (h *Handler) generateOverWS(ctx context.Context, card types.StoryCard, writeCh chan comicWSOutbound) {
	pushComicWS(writeCh, comicWSOutbound{Type: "accepted"})
	ctx = comic.WithProgress(ctx, func(e comic.Event) {
		switch {
		case e.State == comic.StateRendering && e.ImageURL == "":
			pushComicWS(writeCh, comicWSOutbound{Type: "page_started", ComicHash: e.Hash, Page: e.Page, Total: e.Total})
		case e.State == comic.StateRendering:
			pushComicWS(writeCh, comicWSOutbound{Type: "page_complete", ComicHash: e.Hash, Page: e.Page, Total: e.Total, ImageURL: e.ImageURL})
		}
	})
	c, err := h.svc.GenerateComic(ctx, card)
	if err != nil {
		_, body := toErrorBody(err)
		h.log.WarnContext(ctx, "comic_ws_generation_failed", "code", body.Error, "error", err)
		pushComicWS(writeCh, comicWSOutbound{Type: "error", Code: string(body.Error), Message: body.Message})
		return
	}
	pushComicWS(writeCh, comicWSOutbound{Type: "complete", ComicHash: c.Hash, Total: c.PageCount, Comic: &c})
}

// pushComicWS never blocks; when the buffer is full the oldest message is dropped.
func pushComicWS(writeCh chan comicWSOutbound, out comicWSOutbound) {
	if writeCh == nil {
		return
	}
	select {
	case writeCh <- out:
		return
	default:
	}
	select {
	case <-writeCh:
	default:
	}
	select {
	case writeCh <- out:
	default:
	}
}
