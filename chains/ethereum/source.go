package ethereum

import (
	"context"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
	"github.com/wormhole-foundation/wormhole/sdk/vaa"

	"github.com/spyro-labs/spyro-relayer/core"
	"github.com/spyro-labs/spyro-relayer/log"
)

// maxBlockRange bounds a single eth_getLogs query of the poller.
const maxBlockRange = 1000

// Source streams LogMessagePublished logs of the Wormhole core contract.
// Websocket endpoints are subscribed to; HTTP endpoints are polled.
type Source struct {
	chainID      vaa.ChainID
	coreContract common.Address
	backend      SourceBackend

	subscribe    bool
	pollInterval time.Duration
	startBlock   uint64

	mu      sync.Mutex
	cursors map[common.Address]*pollCursor
}

var _ core.SourceChain = (*Source)(nil)

// pollCursor is the next block to poll for one emitter. It outlives
// subscriptions so a restarted watcher resumes where the last one stopped.
type pollCursor struct {
	next uint64
	set  bool
}

func NewSource(cfg SourceConfig, backend SourceBackend) *Source {
	interval := cfg.PollInterval
	if interval == 0 {
		interval = defaultPollInterval
	}
	return &Source{
		chainID:      cfg.WormholeChainID(),
		coreContract: common.HexToAddress(cfg.CoreContract),
		backend:      backend,
		subscribe:    strings.HasPrefix(cfg.RPCURL, "ws://") || strings.HasPrefix(cfg.RPCURL, "wss://"),
		pollInterval: interval,
		startBlock:   cfg.StartBlock,
		cursors:      make(map[common.Address]*pollCursor),
	}
}

func (s *Source) ChainID() vaa.ChainID {
	return s.chainID
}

func (s *Source) CoreContract() common.Address {
	return s.coreContract
}

func (s *Source) filterQuery(emitter common.Address) ethereum.FilterQuery {
	return ethereum.FilterQuery{
		Addresses: []common.Address{s.coreContract},
		Topics: [][]common.Hash{
			{core.LogMessagePublishedTopic},
			{common.BytesToHash(emitter.Bytes())},
		},
	}
}

func (s *Source) SubscribeMessageLogs(ctx context.Context, emitter common.Address, sink chan<- types.Log) (core.Subscription, error) {
	q := s.filterQuery(emitter)
	if s.subscribe {
		return s.backend.SubscribeFilterLogs(ctx, q, sink)
	}
	return s.pollLogs(ctx, emitter, q, sink), nil
}

func (s *Source) cursor(emitter common.Address) *pollCursor {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cursors[emitter]
	if !ok {
		c = &pollCursor{next: s.startBlock, set: s.startBlock > 0}
		s.cursors[emitter] = c
	}
	return c
}

// pollLogs emulates a log subscription with eth_getLogs over consecutive block ranges.
func (s *Source) pollLogs(ctx context.Context, emitter common.Address, q ethereum.FilterQuery, sink chan<- types.Log) event.Subscription {
	logger := log.GetLogger().
		WithChainID(s.chainID.String()).
		WithModule("ethereum.source")
	cursor := s.cursor(emitter)

	return event.NewSubscription(func(quit <-chan struct{}) error {
		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()
		for {
			stopped, err := s.pollOnce(ctx, q, cursor, sink, quit)
			if err != nil {
				logger.Error("failed to poll logs", err, "next_block", cursor.next)
				return err
			}
			if stopped {
				return nil
			}
			select {
			case <-quit:
				return nil
			case <-ctx.Done():
				// the watcher unsubscribes once it sees ctx is done
				<-quit
				return nil
			case <-ticker.C:
			}
		}
	})
}

func (s *Source) pollOnce(ctx context.Context, q ethereum.FilterQuery, cursor *pollCursor, sink chan<- types.Log, quit <-chan struct{}) (bool, error) {
	head, err := s.backend.BlockNumber(ctx)
	if err != nil {
		return false, err
	}
	if !cursor.set {
		cursor.next = head
		cursor.set = true
	}

	for cursor.next <= head {
		to := cursor.next + maxBlockRange - 1
		if to > head {
			to = head
		}
		q.FromBlock = new(big.Int).SetUint64(cursor.next)
		q.ToBlock = new(big.Int).SetUint64(to)
		logs, err := s.backend.FilterLogs(ctx, q)
		if err != nil {
			return false, err
		}
		for _, l := range logs {
			select {
			case sink <- l:
			case <-quit:
				return true, nil
			case <-ctx.Done():
				return true, nil
			}
		}
		cursor.next = to + 1
	}
	return false, nil
}
