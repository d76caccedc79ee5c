package worker

import (
	"context"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
)

type reloader interface {
	Reload()
}

// ReloadListener reloads the inventory whenever a message arrives on a Redis
// pub/sub channel, e.g. `PUBLISH bookify:inventory:reload now`.
type ReloadListener struct {
	redis     *redis.Client
	channel   string
	inventory reloader
	stopChan  chan struct{}
	done      sync.WaitGroup
}

func NewReloadListener(redisClient *redis.Client, channel string, inventory reloader) *ReloadListener {
	return &ReloadListener{
		redis:     redisClient,
		channel:   channel,
		inventory: inventory,
		stopChan:  make(chan struct{}),
	}
}

func (l *ReloadListener) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	pubsub := l.redis.Subscribe(ctx, l.channel)

	l.done.Add(1)
	go func() {
		defer l.done.Done()
		defer cancel()
		defer pubsub.Close()

		l.listen(pubsub.Channel())
	}()

	log.Printf("Listening for inventory reloads on %s", l.channel)
}

func (l *ReloadListener) Stop() {
	close(l.stopChan)
	l.done.Wait()
}

func (l *ReloadListener) listen(ch <-chan *redis.Message) {
	for {
		select {
		case <-l.stopChan:
			log.Println("Reload listener shutting down")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			log.Printf("Inventory reload requested on %s", msg.Channel)
			l.inventory.Reload()
		}
	}
}
