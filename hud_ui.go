package main

import (
	"fmt"
	"image/color"
	"time"

	"github.com/ebitenui/ebitenui"
	imageui "github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/milk9111/bastion/common"
	"github.com/milk9111/bastion/ecs/component"
	"github.com/milk9111/bastion/ecs/system"
	"golang.org/x/image/font/basicfont"
)

var (
	hudTextColor = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	hudWarnColor = color.NRGBA{R: 0xff, G: 0x60, B: 0x60, A: 0xff}
)

// HUD is the ebitenui overlay: stats, the wave banner, the pause menu and
// the game over panel. It is the combat loop's UI collaborator.
type HUD struct {
	ui *ebitenui.UI

	health    *widget.Text
	score     *widget.Text
	resources *widget.Text
	wave      *widget.Text
	banner    *widget.Text
	summary   *widget.Text

	pause    *widget.Container
	gameOver *widget.Container
	root     *widget.Container

	bannerLeft float64
	over       bool
	paused     bool
}

func NewHUD(g *Game) *HUD {
	h := &HUD{}

	panelImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x00, G: 0x00, B: 0x00, A: 200})
	btnImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 255})
	goFace := ebtext.NewGoXFace(basicfont.Face7x13)
	var face ebtext.Face = goFace
	btnTextColor := &widget.ButtonTextColor{Idle: hudTextColor}

	label := func(s string, clr color.Color) *widget.Text {
		return widget.NewText(
			widget.TextOpts.Text(s, &face, clr),
			widget.TextOpts.WidgetOpts(widget.WidgetOpts.LayoutData(widget.RowLayoutData{Position: widget.RowLayoutPositionStart})),
		)
	}
	button := func(s string, onClick func()) *widget.Button {
		return widget.NewButton(
			widget.ButtonOpts.Image(&widget.ButtonImage{Idle: btnImg, Pressed: btnImg}),
			widget.ButtonOpts.Text(s, &face, btnTextColor),
			widget.ButtonOpts.WidgetOpts(widget.WidgetOpts.LayoutData(widget.RowLayoutData{Position: widget.RowLayoutPositionCenter})),
			widget.ButtonOpts.ClickedHandler(func(*widget.ButtonClickedEventArgs) { onClick() }),
		)
	}
	panel := func(minW, minH int) *widget.Container {
		return widget.NewContainer(
			widget.ContainerOpts.BackgroundImage(panelImg),
			widget.ContainerOpts.Layout(widget.NewRowLayout(
				widget.RowLayoutOpts.Direction(widget.DirectionVertical),
				widget.RowLayoutOpts.Spacing(10),
				widget.RowLayoutOpts.Padding(&widget.Insets{Top: 20, Bottom: 20, Left: 30, Right: 30}),
			)),
			widget.ContainerOpts.WidgetOpts(
				widget.WidgetOpts.MinSize(minW, minH),
				widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{HorizontalPosition: widget.AnchorLayoutPositionCenter, VerticalPosition: widget.AnchorLayoutPositionCenter}),
			),
		)
	}

	h.health = label("", hudTextColor)
	h.score = label("", hudTextColor)
	h.resources = label("", hudTextColor)
	h.wave = label("", hudTextColor)
	stats := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Spacing(4),
			widget.RowLayoutOpts.Padding(&widget.Insets{Top: 10, Left: 10}),
		)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{HorizontalPosition: widget.AnchorLayoutPositionStart, VerticalPosition: widget.AnchorLayoutPositionStart}),
		),
	)
	stats.AddChild(h.health)
	stats.AddChild(h.score)
	stats.AddChild(h.resources)
	stats.AddChild(h.wave)
	stats.AddChild(label("[LMB] draw  [wheel] loft  [U] upgrade  [Esc] pause", hudTextColor))

	h.banner = widget.NewText(
		widget.TextOpts.Text("", &face, hudTextColor),
		widget.TextOpts.WidgetOpts(widget.WidgetOpts.LayoutData(widget.RowLayoutData{Position: widget.RowLayoutPositionCenter})),
	)
	bannerRow := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Padding(&widget.Insets{Top: 60}),
		)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{HorizontalPosition: widget.AnchorLayoutPositionCenter, VerticalPosition: widget.AnchorLayoutPositionStart}),
		),
	)
	bannerRow.AddChild(h.banner)

	h.pause = panel(common.BaseWidth/3, common.BaseHeight/4)
	h.pause.AddChild(label("Paused", hudTextColor))
	h.pause.AddChild(button("Resume", func() { g.paused = false }))
	h.pause.AddChild(button("Restart", g.restart))
	h.pause.GetWidget().Visibility = widget.Visibility_Hide

	h.summary = label("", hudWarnColor)
	h.gameOver = panel(common.BaseWidth/2, common.BaseHeight/4)
	h.gameOver.AddChild(h.summary)
	h.gameOver.AddChild(button("Play again", g.restart))
	h.gameOver.GetWidget().Visibility = widget.Visibility_Hide

	h.root = widget.NewContainer(widget.ContainerOpts.Layout(widget.NewAnchorLayout()))
	h.root.AddChild(stats)
	h.root.AddChild(bannerRow)
	h.root.AddChild(h.pause)
	h.root.AddChild(h.gameOver)

	h.ui = &ebitenui.UI{Container: h.root}
	return h
}

func (h *HUD) ShowMessage(text string, d time.Duration) {
	h.banner.Label = text
	h.bannerLeft = max(d.Seconds(), 2)
}

func (h *HUD) GameOver(message string, state component.GameState) {
	h.over = true
	h.summary.Label = fmt.Sprintf("%s\nScore: %d\nPress R to restart", message, state.Score)
	h.setVisible(h.gameOver, true)
}

// Reset hides the end-of-run panels.
func (h *HUD) Reset() {
	h.over = false
	h.banner.Label = ""
	h.bannerLeft = 0
	h.setVisible(h.gameOver, false)
	h.setVisible(h.pause, false)
}

func (h *HUD) setVisible(c *widget.Container, visible bool) {
	if visible {
		c.GetWidget().Visibility = widget.Visibility_Show
	} else {
		c.GetWidget().Visibility = widget.Visibility_Hide
	}
	h.root.RequestRelayout()
}

// Update refreshes the labels from the loop and runs the widget tree.
func (h *HUD) Update(loop *system.CombatLoop, dt float64, paused bool) {
	s := loop.State()
	h.health.Label = fmt.Sprintf("Tower: %d/%d   Defender: %d", s.StructureHealth, s.MaxStructureHealth, s.DefenderHealth)
	h.score.Label = fmt.Sprintf("Score: %d", s.Score)
	h.resources.Label = fmt.Sprintf("Resources: %d   Bow level: %d", s.Resources, s.UpgradeLevel)
	h.wave.Label = fmt.Sprintf("Wave: %d/%d   Enemies: %d", s.CurrentWave, loop.Waves().WaveCount(), loop.Attackers().Count())

	if h.bannerLeft > 0 {
		h.bannerLeft -= dt
		if h.bannerLeft <= 0 && !loop.Victory() {
			h.banner.Label = ""
		}
	}

	if paused != h.paused {
		h.paused = paused
		h.setVisible(h.pause, paused)
	}
	h.ui.Update()
}

func (h *HUD) Draw(screen *ebiten.Image) {
	h.ui.Draw(screen)
}
