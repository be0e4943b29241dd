package ui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/repbattle/internal/combat"
	"github.com/samdwyer/repbattle/internal/gamedata"
)

// Layout.
const (
	barWidth   = 20
	logLines   = 8
	panelTop   = 2
	skillsTop  = 10
	logTop     = 13
	leftMargin = 1
)

var (
	styleTitle   = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleText    = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleDim     = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleHP      = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleMeter   = tcell.StyleDefault.Foreground(tcell.ColorAqua)
	styleShield  = tcell.StyleDefault.Foreground(tcell.ColorSilver)
	styleReady   = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleBuff    = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleDebuff  = tcell.StyleDefault.Foreground(tcell.ColorOrange)
	stylePrompt  = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorYellow)
	styleWon     = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleLost    = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	playerGlyphs = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
)

// Renderer draws an encounter. It is also a combat.Listener that keeps the
// tail of the combat log for display.
type Renderer struct {
	screen *Screen
	log    []string
	header string
}

var _ combat.Listener = (*Renderer)(nil)

// NewRenderer creates a renderer for the given screen.
func NewRenderer(screen *Screen) *Renderer {
	return &Renderer{screen: screen}
}

// SetHeader sets the title line, e.g. the gauntlet progress.
func (r *Renderer) SetHeader(header string) {
	r.header = header
}

// HandleEvent implements combat.Listener.
func (r *Renderer) HandleEvent(ev combat.Event) {
	switch ev.Kind {
	case combat.EventCombatStarted:
		r.log = r.log[:0]
		r.push(ev.Message)
	case combat.EventLog:
		r.push(ev.Message)
	}
}

func (r *Renderer) push(line string) {
	if line == "" {
		return
	}
	r.log = append(r.log, line)
	if len(r.log) > logLines {
		r.log = r.log[len(r.log)-logLines:]
	}
}

// Log returns the lines currently displayed.
func (r *Renderer) Log() []string {
	return r.log
}

// Render draws the full encounter view and flushes it.
func (r *Renderer) Render(e *combat.Engine) {
	r.screen.Clear()
	w, h := r.screen.Size()

	title := "repbattle"
	if r.header != "" {
		title += " | " + r.header
	}
	r.screen.Text(leftMargin, 0, title, styleTitle)

	player, enemy := e.Player(), e.Enemy()
	r.drawPanel(leftMargin, panelTop, player, playerGlyphs)
	enemyStyle := tcell.StyleDefault.Foreground(gamedata.ColorOr(enemy.Profile().Color, tcell.ColorRed)).Bold(true)
	r.drawPanel(max(w/2, leftMargin+barWidth+16), panelTop, enemy, enemyStyle)

	r.drawSkills(leftMargin, skillsTop, player, e.Awaiting())

	r.screen.Text(leftMargin, logTop-1, "Log", styleDim)
	for i, line := range r.log {
		r.screen.Text(leftMargin, logTop+i, line, styleText)
	}

	r.drawStatus(leftMargin, h-1, e)
	r.screen.Show()
}

// drawPanel draws one combatant: name, HP, meter, shield and effects.
func (r *Renderer) drawPanel(x, y int, c *combat.Character, nameStyle tcell.Style) {
	p := c.Profile()
	glyph := p.Glyph
	if glyph == 0 {
		glyph = '@'
	}
	r.screen.SetContent(x, y, glyph, nameStyle)
	r.screen.Text(x+2, y, fmt.Sprintf("%s  Lv %d", c.Name(), c.Level()), nameStyle)

	r.screen.Text(x, y+1, "HP    ", styleDim)
	r.screen.Text(x+6, y+1, Bar(c.HP(), c.MaxHP(), barWidth), styleHP)
	r.screen.Text(x+9+barWidth, y+1, fmt.Sprintf("%d/%d", c.HP(), c.MaxHP()), styleText)

	meter := int(min(c.Meter(), combat.MeterFull))
	r.screen.Text(x, y+2, "Meter ", styleDim)
	r.screen.Text(x+6, y+2, Bar(meter, int(combat.MeterFull), barWidth), styleMeter)
	r.screen.Text(x+9+barWidth, y+2, fmt.Sprintf("%d", int(c.Meter())), styleText)

	if c.Shield() > 0 {
		r.screen.Text(x, y+3, fmt.Sprintf("Shield %d", c.Shield()), styleShield)
	}

	col := x
	for _, eff := range c.Effects() {
		label := EffectLabel(eff)
		style := styleBuff
		if eff.IsNegative() {
			style = styleDebuff
		}
		col = r.screen.Text(col, y+4, label, style) + 1
	}

	stats := c.DeriveStats()
	r.screen.Text(x, y+5, fmt.Sprintf("ATK %d  DEF %d  SPD %.0f", stats.Attack, stats.Defense, stats.Speed), styleDim)
}

// drawSkills lists the player's skills with their hotkeys.
func (r *Renderer) drawSkills(x, y int, c *combat.Character, awaiting bool) {
	r.screen.Text(x, y, "Skills", styleDim)
	col := x
	for i, s := range c.Skills() {
		style := styleDim
		if awaiting && c.CanUse(s) {
			style = styleReady
		}
		label := fmt.Sprintf("%d) %s [%d]", i+1, s.Name, s.Cost)
		if cd := c.Cooldown(s.ID); cd > 0 {
			label += fmt.Sprintf(" cd %d", cd)
		}
		if s.Ultimate {
			label += " *"
		}
		col = r.screen.Text(col, y+1, label, style) + 2
	}
}

func (r *Renderer) drawStatus(x, y int, e *combat.Engine) {
	switch e.State() {
	case combat.StateAwaitingChoice:
		r.screen.Text(x, y, " Choose a skill (1-5), q to flee ", stylePrompt)
	case combat.StatePlayerWon:
		r.screen.Text(x, y, "Victory! Press any key.", styleWon)
	case combat.StatePlayerLost:
		r.screen.Text(x, y, "Defeat. Press any key.", styleLost)
	default:
		r.screen.Text(x, y, fmt.Sprintf("%.1fs  turn %d", e.Elapsed().Seconds(), e.TurnCount()), styleDim)
	}
}

// Bar renders value out of total as a fixed-width gauge.
func Bar(value, total, width int) string {
	if total <= 0 || width <= 0 {
		return ""
	}
	filled := min(max(value*width/total, 0), width)
	if value > 0 && filled == 0 {
		filled = 1
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}

// EffectLabel is the short on-screen form of a status effect, e.g.
// "attack+25%(2)" or "dot(3)".
func EffectLabel(e combat.StatusEffect) string {
	name := e.Icon
	if name == "" {
		name = string(e.Stat)
	}
	if e.Kind == combat.KindDamageOverTime && e.Icon == "" {
		name = "dot"
	}

	var amount string
	switch {
	case e.Kind == combat.KindDamageOverTime:
	case e.Fraction:
		amount = fmt.Sprintf("%.0f%%", e.Magnitude*100)
	default:
		amount = fmt.Sprintf("%g", e.Magnitude)
	}
	sign := "+"
	if e.Kind == combat.KindDebuff {
		sign = "-"
	}
	if amount != "" {
		amount = sign + amount
	}
	return fmt.Sprintf("%s%s(%d)", name, amount, e.Remaining)
}
