package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"

	"sudooom.mahjong/internal/game/mahjong/ai"
	"sudooom.mahjong/internal/game/mahjong/table"
)

func main() {
	difficulty := flag.String("difficulty", "medium", "AI difficulty: easy, medium or hard")
	seed := flag.Int64("seed", 0, "wall seed, 0 uses the current time")
	pause := flag.Duration("pause", 300*time.Millisecond, "delay between AI moves")
	flag.Parse()

	// 终端只打印警告以上的日志
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	d, err := ai.ParseDifficulty(*difficulty)
	if err != nil {
		color.HiRed("%v", err)
		os.Exit(1)
	}
	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	p := &player{
		engine: table.NewEngine(),
		in:     bufio.NewReader(os.Stdin),
		pause:  *pause,
	}
	if err := p.run(d, *seed); err != nil && err != io.EOF {
		color.HiRed("%v", err)
		os.Exit(1)
	}
}

// player 本地终端对局
type player struct {
	engine *table.Engine
	state  *table.State
	in     *bufio.Reader
	pause  time.Duration
}

func (p *player) run(d ai.Difficulty, seed int64) error {
	st, _, err := p.engine.StartSession(d, seed)
	if err != nil {
		return err
	}
	p.state = st
	color.HiCyan("Hong Kong Mahjong, %s AI, seed %d", d, seed)

	for {
		if p.state.Phase.IsOver() {
			printResult(p.view())
			line, err := p.prompt("n = next round, q = quit")
			if err != nil {
				return err
			}
			if line == "q" {
				return nil
			}
			if _, err := p.engine.NextRound(p.state); err != nil {
				return err
			}
			continue
		}

		if step, seat := p.state.PendingAI(); step != table.AIStepNone {
			events, err := p.engine.PlayAI(p.state, step, seat)
			if err != nil {
				return err
			}
			printEvents(p.view(), events)
			time.Sleep(p.pause)
			continue
		}

		if err := p.humanTurn(); err != nil {
			return err
		}
	}
}

func (p *player) view() *table.View {
	v, _ := p.state.View(table.HumanSeat)
	return v
}

func (p *player) prompt(msg string) (string, error) {
	color.New(color.FgHiWhite, color.Bold).Printf("%s > ", msg)
	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.ToLower(strings.TrimSpace(line)), nil
}

// humanTurn 读取并执行一次人类输入，非法输入会提示后重试
func (p *player) humanTurn() error {
	v := p.view()
	printTable(v)

	var msg string
	switch {
	case v.Phase == table.PhaseDraw && v.CurrentTurn == table.HumanSeat:
		msg = "enter = draw"
	case v.Phase == table.PhaseDiscard && v.CurrentTurn == table.HumanSeat:
		msg = fmt.Sprintf("1-%d = discard, h = declare win", len(v.Seats[table.HumanSeat].Hand))
	case v.Phase == table.PhaseClaim && v.AwaitingHuman:
		msg = claimPrompt(v)
	default:
		return fmt.Errorf("nothing to do in phase %s on seat %d", v.Phase, v.CurrentTurn)
	}

	line, err := p.prompt(msg)
	if err != nil {
		return err
	}
	action, err := parseAction(v, line)
	if err != nil {
		color.HiYellow("%v", err)
		return nil
	}

	events, err := p.engine.HandleAction(context.Background(), p.state, action)
	if err != nil {
		color.HiYellow("%v", err)
		return nil
	}
	printEvents(p.view(), events)
	return nil
}

func claimPrompt(v *table.View) string {
	parts := []string{}
	if o := v.Options; o != nil {
		if o.CanWin {
			parts = append(parts, fmt.Sprintf("h = win (%d fan)", o.Fan))
		}
		if o.CanKong {
			parts = append(parts, "k = kong")
		}
		if o.CanPong {
			parts = append(parts, "p = pong")
		}
		for i, chow := range o.Chows {
			parts = append(parts, fmt.Sprintf("c%d = chow %s", i+1, tilesText(chow)))
		}
	}
	parts = append(parts, "enter = pass")
	return strings.Join(parts, ", ")
}

// parseAction 把输入转换为人类座位的动作
func parseAction(v *table.View, line string) (table.Action, error) {
	action := table.Action{Seat: table.HumanSeat}

	switch v.Phase {
	case table.PhaseDraw:
		action.Type = table.ActionDraw
		return action, nil

	case table.PhaseDiscard:
		if line == "h" {
			action.Type = table.ActionClaim
			action.Claim = table.ClaimWin
			return action, nil
		}
		hand := v.Seats[table.HumanSeat].Hand
		n, err := strconv.Atoi(line)
		if err != nil || n < 1 || n > len(hand) {
			return action, fmt.Errorf("pick a tile between 1 and %d", len(hand))
		}
		action.Type = table.ActionDiscard
		action.TileID = hand[n-1].ID
		return action, nil

	case table.PhaseClaim:
		action.Type = table.ActionClaim
		switch {
		case line == "":
			action.Type = table.ActionPass
		case line == "h":
			action.Claim = table.ClaimWin
		case line == "k":
			action.Claim = table.ClaimKong
		case line == "p":
			action.Claim = table.ClaimPong
		case strings.HasPrefix(line, "c"):
			choice := 0
			if rest := strings.TrimPrefix(line, "c"); rest != "" {
				n, err := strconv.Atoi(rest)
				if err != nil || n < 1 {
					return action, fmt.Errorf("unknown chow %q", line)
				}
				choice = n - 1
			}
			action.Claim = table.ClaimChow
			action.ChowChoice = &choice
		default:
			return action, fmt.Errorf("unknown input %q", line)
		}
		return action, nil
	}
	return action, fmt.Errorf("cannot act in phase %s", v.Phase)
}
