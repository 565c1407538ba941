package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"sudooom.mahjong/internal/game/mahjong/core"
	"sudooom.mahjong/internal/game/mahjong/hkmahjong"
	"sudooom.mahjong/internal/game/mahjong/table"
)

// tileColor 按花色上色
func tileColor(t core.Tile) *color.Color {
	switch t.Suit {
	case core.SuitMan:
		return color.New(color.FgHiRed)
	case core.SuitPin:
		return color.New(color.FgHiBlue)
	case core.SuitSou:
		return color.New(color.FgHiGreen)
	case core.SuitWind:
		return color.New(color.FgHiWhite, color.Bold)
	case core.SuitDragon:
		return color.New(color.FgHiYellow, color.Bold)
	default:
		return color.New(color.FgHiMagenta)
	}
}

func tileText(t core.Tile) string {
	return tileColor(t).Sprint(t.String())
}

func tilesText(tiles []core.Tile) string {
	parts := make([]string, len(tiles))
	for i, t := range tiles {
		parts[i] = tileText(t)
	}
	return strings.Join(parts, " ")
}

func meldsText(melds []core.Meld) string {
	if len(melds) == 0 {
		return "-"
	}
	parts := make([]string, len(melds))
	for i, m := range melds {
		parts[i] = "[" + m.Type.String() + " " + tilesText(m.Tiles) + "]"
	}
	return strings.Join(parts, " ")
}

// printTable 打印人类视角的牌桌
func printTable(v *table.View) {
	fmt.Println()
	color.New(color.FgHiCyan).Printf("== Round %d  %s wind  wall %d  (%s) ==\n",
		v.RoundNum, v.RoundWind, v.WallRemaining, v.Difficulty)

	for i := 1; i < table.NumSeats; i++ {
		s := v.Seats[i]
		marker := " "
		if v.CurrentTurn == i {
			marker = "*"
		}
		fmt.Printf("%s %-6s %-5s score %4d  hand %2d  melds %s\n",
			marker, s.Name, s.Wind, s.Score, s.HandSize, meldsText(s.Melds))
		if len(s.Bonus) > 0 {
			fmt.Printf("         bonus %s\n", tilesText(s.Bonus))
		}
		fmt.Printf("         river %s\n", tilesText(s.Discards))
	}

	if v.LastDiscard != nil {
		fmt.Printf("Last discard: %s by %s\n", tileText(*v.LastDiscard), v.Seats[v.LastDiscardBy].Name)
	}

	me := v.Seats[table.HumanSeat]
	fmt.Println(strings.Repeat("-", 48))
	fmt.Printf("You (%s) score %d  melds %s\n", me.Wind, me.Score, meldsText(me.Melds))
	if len(me.Bonus) > 0 {
		fmt.Printf("Bonus: %s\n", tilesText(me.Bonus))
	}
	fmt.Printf("River: %s\n", tilesText(me.Discards))

	fmt.Print("Hand:  ")
	for i, t := range me.Hand {
		fmt.Printf("%d:%s ", i+1, tileText(t))
	}
	fmt.Println()

	if me.Hint != nil {
		printHint(*me.Hint)
	}
}

func printHint(h hkmahjong.Hint) {
	switch h.Kind {
	case hkmahjong.HintWin:
		color.HiRed("Winning hand! Type h to declare.")
	case hkmahjong.HintTenpai:
		color.HiGreen("Tenpai")
	case hkmahjong.HintAway:
		color.HiYellow("%d away from tenpai", h.Shanten)
	}
}

// printEvents 打印 AI 动作
func printEvents(v *table.View, events []table.Event) {
	for _, ev := range events {
		name := "?"
		if ev.Seat >= 0 && ev.Seat < table.NumSeats {
			name = v.Seats[ev.Seat].Name
		}
		switch ev.Type {
		case table.EventDiscarded:
			if ev.Tile != nil {
				fmt.Printf("  %s discards %s\n", name, tileText(*ev.Tile))
			}
		case table.EventClaimed:
			if ev.Meld != nil {
				color.New(color.FgHiYellow).Printf("  %s claims %s ", name, ev.Claim)
				fmt.Println(tilesText(ev.Meld.Tiles))
			}
		case table.EventBonus:
			if ev.Tile != nil {
				fmt.Printf("  %s reveals %s\n", name, tileText(*ev.Tile))
			}
		case table.EventDrew:
			if ev.Seat == table.HumanSeat && ev.Tile != nil {
				fmt.Printf("  You drew %s\n", tileText(*ev.Tile))
			}
		}
	}
}

// printResult 打印本局结算
func printResult(v *table.View) {
	fmt.Println()
	if v.Phase == table.PhaseDrawGame || v.Result == nil {
		color.HiYellow("Draw game, the wall is exhausted.")
	} else {
		r := v.Result
		how := "by discard from " + v.Seats[max(r.From, 0)].Name
		if r.SelfDrawn {
			how = "by self-draw"
		}
		color.New(color.FgHiRed, color.Bold).Printf("%s wins %s!\n", v.Seats[r.Seat].Name, how)
		fmt.Printf("Fan %d  Points %d\n", r.Fan, r.Points)
		for _, b := range r.Breakdown {
			fmt.Printf("  %s\n", b)
		}
		if hand := v.Seats[r.Seat].Hand; len(hand) > 0 {
			fmt.Printf("Hand: %s\n", tilesText(hand))
		}
	}

	fmt.Print("Scores:")
	for i, s := range v.Seats {
		fmt.Printf("  %s %d", s.Name, v.Scores[i])
	}
	fmt.Println()
}
