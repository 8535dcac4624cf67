package main

import (
	"fmt"
	"strings"

	"github.com/dep2p/go-messenger"
)

// Window 一个顶层窗口
type Window struct {
	Title  string
	Width  int
	Height int
}

// WindowsEnumerated 窗口枚举完成
type WindowsEnumerated struct{ messenger.Typed[[]Window] }

// LayoutApplied 布局已应用
type LayoutApplied struct{ messenger.Bus }

// EventLayoutChanged 具名事件：布局切换，处理函数形状 func(sender any, layout string)
const EventLayoutChanged = "LayoutChanged"

var layouts = []string{"grid", "columns", "cascade"}

var titles = []string{"editor", "terminal", "browser", "notes", "mail"}

// enumerate 模拟窗口枚举
func enumerate(round int) []Window {
	n := 1 + round%len(titles)
	out := make([]Window, n)
	for i := range out {
		out[i] = Window{Title: titles[i], Width: 640 + 40*i, Height: 480}
	}
	return out
}

// arranger 绑定到所有者句柄的订阅者
type arranger struct {
	owner messenger.Handle
	seen  int
}

func newArranger(owner messenger.Handle) *arranger {
	return &arranger{owner: owner}
}

// wire 以三种投递策略订阅事件
func (a *arranger) wire(m *messenger.Messenger) error {
	windows := messenger.Event[WindowsEnumerated](m)
	own := messenger.WithOwner(a.owner)

	if _, err := windows.Subscribe(a.onEnumerated, own); err != nil {
		return err
	}
	if _, err := windows.Subscribe(a.index,
		own,
		messenger.WithPolicy(messenger.PolicyBackground),
		messenger.WithFilter(func(ws []Window) bool { return len(ws) >= 3 }),
	); err != nil {
		return err
	}
	if m.UI() != nil {
		if _, err := windows.Subscribe(a.render, own, messenger.WithPolicy(messenger.PolicyUI)); err != nil {
			return err
		}
	}

	if _, err := messenger.Event[LayoutApplied](m).Subscribe(func() {
		logger.Debug("布局已应用")
	}); err != nil {
		return err
	}

	return m.Named().Add(EventLayoutChanged, a.onLayoutChanged, a.owner)
}

func (a *arranger) onEnumerated(ws []Window) {
	a.seen++
	logger.Info("收到窗口列表", "windows", len(ws), "seen", a.seen)
}

// index 在后台工作池上运行
func (a *arranger) index(ws []Window) {
	names := make([]string, len(ws))
	for i, w := range ws {
		names[i] = w.Title
	}
	logger.Info("后台索引窗口", "titles", strings.Join(names, ","))
}

// render 在 UI goroutine 上运行
func (a *arranger) render(ws []Window) {
	fmt.Printf("  [ui] 渲染 %d 个窗口\n", len(ws))
}

func (a *arranger) onLayoutChanged(sender any, layout string) {
	fmt.Printf("  [named] 布局切换为 %s\n", layout)
}
