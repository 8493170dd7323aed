package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ReZorDos/TerraWar-sub000/client"
	"github.com/ReZorDos/TerraWar-sub000/config"
	"github.com/ReZorDos/TerraWar-sub000/logging"
	"github.com/ReZorDos/TerraWar-sub000/messages"
	"github.com/ReZorDos/TerraWar-sub000/models"
	"github.com/ReZorDos/TerraWar-sub000/services"
)

const (
	mapWidth  = 12
	mapHeight = 10
)

func main() {
	cfg := config.LoadClient()
	log, err := logging.New(cfg.LogLevel, "console")
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	nick := cfg.Nick
	if nick == "" {
		nick = fmt.Sprintf("bot-%d", os.Getpid())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := client.Dial(ctx, cfg.ServerAddr, client.Options{Logger: log})
	if err != nil {
		log.Fatal("cannot reach server", zap.String("addr", cfg.ServerAddr), zap.Error(err))
	}
	defer c.Close()

	b := &bot{client: c, log: log.With(zap.String("nick", nick)), slot: -1}
	c.OnResponse(b.onResponse)
	c.OnState(b.onState)

	if err := c.Connect(nick, 0); err != nil {
		log.Fatal("connect failed", zap.Error(err))
	}

	select {
	case <-ctx.Done():
		_ = c.Leave("interrupted")
		time.Sleep(100 * time.Millisecond)
	case <-c.Done():
		log.Info("server closed the connection")
	}
}

// bot plays automatically. Its callbacks all run on the client's reader goroutine.
type bot struct {
	client       *client.SyncClient
	log          *zap.Logger
	slot         int
	readySent    bool
	bootstrapped bool
	played       bool
}

func (b *bot) onResponse(resp messages.InboundResponse) {
	if b.slot >= 0 {
		return
	}
	if !resp.Success {
		b.log.Error("connect rejected", zap.String("reason", resp.Message))
		b.client.Close()
		return
	}
	var result messages.ConnectResult
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		b.log.Error("bad connect response", zap.Error(err))
		return
	}
	b.slot = result.IndexOfPlayer
	b.log.Info("joined match", zap.Int("slot", b.slot))
}

func (b *bot) onState(state messages.StateMessage) {
	if b.slot < 0 {
		return
	}

	if !state.GameStarted {
		b.played = false
		if !b.readySent && len(state.Players) >= services.MinPlayers {
			b.readySent = true
			_ = b.client.SetReady(true)
		}
		if b.slot == 0 && !b.bootstrapped && len(state.Players) >= services.MinPlayers && state.AllReady() {
			b.bootstrap(state.Players)
		}
		return
	}

	if !b.client.IsMyTurn() {
		b.played = false
		return
	}
	if b.played {
		return
	}
	b.played = true
	b.playTurn()
}

func (b *bot) bootstrap(players []string) {
	w, err := services.NewMatchWorld(players, mapWidth, mapHeight, time.Now().UnixNano())
	if err != nil {
		b.log.Error("map generation failed", zap.Error(err))
		return
	}
	b.bootstrapped = true
	b.log.Info("starting match", zap.Strings("players", players))
	_ = b.client.SubmitState(services.ToSnapshot(w))
}

func (b *bot) playTurn() {
	nick := b.client.Nick()
	var moves, bought int

	b.client.WithWorld(func(w *services.World) {
		if err := w.Turns.StartPlayerTurn(); err != nil {
			b.log.Warn("cannot start turn", zap.Error(err))
			return
		}
		me, err := w.Players.ByName(nick)
		if err != nil {
			return
		}

		for _, unit := range w.Units.ByOwner(me.ID) {
			target, ok := pickTarget(w, unit, me.ID)
			if !ok {
				continue
			}
			if _, err := w.ResolveAction(unit.ID, target.X, target.Y); err == nil {
				moves++
			}
		}

		for me.Money >= services.UnitPrice(models.MinUnitLevel) && me.Income > models.UnitUpkeep(models.MinUnitLevel) {
			cell, ok := freeCell(w, me.ID)
			if !ok {
				break
			}
			if _, err := w.BuyUnit(models.MinUnitLevel); err != nil {
				break
			}
			if err := w.PlaceAt(cell.X, cell.Y); err != nil {
				w.CancelPlacement()
				break
			}
			bought++
		}

		w.Turns.EndPlayerTurn()
	})

	b.log.Info("turn played", zap.Int("moves", moves), zap.Int("bought", bought))
	_ = b.client.SubmitWorld()
	_ = b.client.EndTurn()
}

// pickTarget prefers cells that change hands, then anything reachable
func pickTarget(w *services.World, unit *models.Unit, owner int) (models.Position, bool) {
	area := w.ComputeActionArea(unit)
	if len(area) == 0 {
		return models.Position{}, false
	}

	cells := make([]models.Position, 0, len(area))
	for p := range area {
		cells = append(cells, p)
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Y != cells[j].Y {
			return cells[i].Y < cells[j].Y
		}
		return cells[i].X < cells[j].X
	})

	for _, p := range cells {
		if hex, ok := w.Grid.Get(p.X, p.Y); ok && hex.OwnerID != owner {
			return p, true
		}
	}
	return cells[0], true
}

func freeCell(w *services.World, owner int) (models.Position, bool) {
	for _, hex := range w.Grid.OwnedBy(owner) {
		if !w.Occupied(hex.X, hex.Y) {
			return hex.Pos(), true
		}
	}
	return models.Position{}, false
}
