package tui

import (
	"context"
	"strconv"
	"time"

	"github.com/AI-ML-Modelor/aa/internal/bus"
	"github.com/AI-ML-Modelor/aa/internal/status"
	"github.com/AI-ML-Modelor/aa/internal/tui/keys"
	"github.com/AI-ML-Modelor/aa/internal/tui/model"
	"github.com/AI-ML-Modelor/aa/internal/tui/ui"
	"github.com/AI-ML-Modelor/aa/internal/tui/views"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"go.uber.org/zap"
)

// Page names used on the navigation stack.
const (
	pageConversations = "conversations"
	pageThread        = "thread"
	pageSearch        = "search"
	pagePair          = "pair"
	pageOnboarding    = "onboarding"
	pageHelp          = "help"
	pageDetails       = "details"
)

// App is the main TUI application shell.
type App struct {
	app       *tview.Application
	theme     *ui.Theme
	pages     *ui.Pages
	crumbs    *ui.Crumbs
	menu      *ui.Menu
	logo      *ui.Logo
	info      *ui.SessionInfo
	flashBar  *ui.FlashBar
	prompt    *ui.Prompt
	statusBar *views.StatusBar
	registry  *keys.Registry

	vm      *model.ViewModel
	machine *status.Machine
	bus     *bus.Bus
	logger  *zap.Logger

	convList *views.ConversationList
	thread   *views.MessageThread
	searchV  *views.SearchView
	pairV    *views.PairView
	onboardV *views.OnboardingView
	helpV    *views.HelpView
	detailsV *views.ConversationInfo

	components map[string]ui.Component

	session   string
	startedAt time.Time
	layout    *tview.Flex
	promptOn  bool

	ctx    context.Context
	cancel context.CancelFunc
}

// NewApp creates the TUI application.
func NewApp(vm *model.ViewModel, machine *status.Machine, b *bus.Bus, logger *zap.Logger, sessionName string) *App {
	ctx, cancel := context.WithCancel(context.Background())
	theme := ui.DefaultTheme()

	a := &App{
		app:       tview.NewApplication(),
		theme:     theme,
		pages:     ui.NewPages(),
		crumbs:    ui.NewCrumbs(theme),
		menu:      ui.NewMenu(theme),
		logo:      ui.NewLogo(theme),
		info:      ui.NewSessionInfo(theme),
		flashBar:  ui.NewFlashBar(theme),
		prompt:    ui.NewPrompt(theme),
		statusBar: views.NewStatusBar(),
		registry:  keys.NewRegistry(),
		vm:        vm,
		machine:   machine,
		bus:       b,
		logger:    logger,
		convList:  views.NewConversationList(theme),
		thread:    views.NewMessageThread(theme),
		searchV:   views.NewSearchView(theme),
		pairV:     views.NewPairView(theme),
		onboardV:  views.NewOnboardingView(theme),
		helpV:     views.NewHelpView(theme),
		detailsV:  views.NewConversationInfo(theme),
		session:   sessionName,
		startedAt: time.Now(),
		ctx:       ctx,
		cancel:    cancel,
	}

	a.components = map[string]ui.Component{
		pageConversations: a.convList,
		pageThread:        a.thread,
		pageSearch:        a.searchV,
		pagePair:          a.pairV,
		pageOnboarding:    a.onboardV,
		pageHelp:          a.helpV,
		pageDetails:       a.detailsV,
	}

	a.statusBar.SetSession(sessionName)
	a.setupBindings()
	a.setupCallbacks()
	a.setupPrompt()
	a.setupLayout()
	a.setupInputCapture()

	return a
}

func (a *App) setupBindings() {
	a.registry.AddGlobal("quit", &keys.Action{
		Rune: 'q', Key: tcell.KeyRune,
		Description: "q:quit", Visible: true,
		Handler: func() { a.Stop() },
	})
	a.registry.AddGlobal("help", &keys.Action{
		Rune: '?', Key: tcell.KeyRune,
		Description: "?:help", Visible: true,
		Handler: func() {
			if cur := a.pages.Current(); cur != pageHelp && cur != pageOnboarding {
				a.pages.Push(pageHelp)
			}
		},
	})
	a.registry.AddView(pageConversations, "pair", &keys.Action{
		Rune: 'p', Key: tcell.KeyRune,
		Description: "p:pair", Visible: true,
		Handler: func() { a.showPair() },
	})
	a.registry.AddView(pageThread, "compose", &keys.Action{
		Rune: 'i', Key: tcell.KeyRune,
		Description: "i:compose", Visible: true,
		Handler: func() { a.app.SetFocus(a.thread.Composer()) },
	})
	a.registry.AddView(pageThread, "details", &keys.Action{
		Rune: 'd', Key: tcell.KeyRune,
		Description: "d:details", Visible: true,
		Handler: func() { a.showDetails() },
	})
}

func (a *App) setupCallbacks() {
	a.pages.SetOnChange(func(stack []string) {
		a.crumbs.Update(stack)
		if c, ok := a.components[a.pages.Current()]; ok {
			a.menu.Update(c.Hints())
		}
	})

	a.convList.SetSelectedFunc(func(row, col int) {
		if r := a.convList.SelectedRow(); r != nil {
			a.openRow(*r)
		}
	})

	a.thread.SetOnSend(func(text string) {
		if err := a.vm.SendText(text); err != nil {
			a.vm.Flash.Err(err)
			a.renderFlash()
		}
	})

	a.searchV.SetOnQuery(func(query string) {
		go func() {
			results, err := a.vm.Search(query)
			if err != nil {
				a.vm.Flash.Err(err)
				return
			}
			a.app.QueueUpdateDraw(func() {
				a.searchV.Update(results)
				a.app.SetFocus(a.searchV.Results())
			})
		}()
	})
	a.searchV.Results().SetSelectedFunc(func(row, col int) {
		chatID, _ := a.searchV.SelectedResult()
		if chatID != "" {
			a.openChatID(chatID)
		}
	})

	a.pairV.SetOnCode(func(raw string) {
		go func() {
			if err := a.vm.RegisterPeer(raw); err != nil {
				a.vm.Flash.Err(err)
			} else {
				a.vm.Flash.Info("Contact added")
				_ = a.vm.Reload()
			}
			a.app.QueueUpdateDraw(func() {
				a.renderFlash()
				a.refreshCurrentPage()
			})
		}()
	})

	a.onboardV.SetOnSubmit(func(displayName string) {
		go func() {
			if err := a.vm.CreateProfile(displayName); err != nil {
				a.vm.Flash.Err(err)
				a.app.QueueUpdateDraw(a.renderFlash)
				return
			}
			_ = a.machine.Transition(status.Ready)
			_ = a.vm.Reload()
			a.app.QueueUpdateDraw(func() {
				a.pages.Reset(pageConversations)
				a.refreshCurrentPage()
				a.app.SetFocus(a.convList)
			})
		}()
	})
}

func (a *App) setupPrompt() {
	a.prompt.SetOnChange(func(mode ui.PromptMode, text string) {
		if mode == ui.PromptFilter {
			a.vm.SetFilter(text)
			a.convList.Update(a.vm.Rows(), a.vm.TotalEntries(), a.vm.Filter())
		}
	})
	a.prompt.SetOnSubmit(func(mode ui.PromptMode, text string) {
		a.deactivatePrompt()
		if mode == ui.PromptCommand {
			a.runCommand(ParseCommand(text))
		}
	})
	a.prompt.SetOnCancel(func() {
		if a.prompt.Mode() == ui.PromptFilter {
			a.vm.SetFilter("")
			a.convList.Update(a.vm.Rows(), a.vm.TotalEntries(), "")
		}
		a.deactivatePrompt()
	})
}

func (a *App) setupLayout() {
	header := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(a.info, 34, 0, false).
		AddItem(a.menu, 0, 1, false).
		AddItem(a.logo, 18, 0, false)

	a.pages.AddPage(pageConversations, a.convList, true, true)
	a.pages.AddPage(pageThread, a.thread, true, false)
	a.pages.AddPage(pageSearch, a.searchV, true, false)
	a.pages.AddPage(pagePair, a.pairV, true, false)
	a.pages.AddPage(pageOnboarding, a.onboardV, true, false)
	a.pages.AddPage(pageHelp, a.helpV, true, false)
	a.pages.AddPage(pageDetails, a.detailsV, true, false)

	a.layout = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(header, 6, 0, false).
		AddItem(a.crumbs, 1, 0, false).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.flashBar, 1, 0, false).
		AddItem(a.statusBar, 1, 0, false)

	a.app.SetRoot(a.layout, true)
}

func (a *App) activatePrompt(mode ui.PromptMode) {
	if a.promptOn {
		return
	}
	a.promptOn = true
	a.prompt.Activate(mode)
	a.layout.RemoveItem(a.statusBar)
	a.layout.AddItem(a.prompt, 3, 0, false)
	a.layout.AddItem(a.statusBar, 1, 0, false)
	a.app.SetFocus(a.prompt)
}

func (a *App) deactivatePrompt() {
	if !a.promptOn {
		return
	}
	a.promptOn = false
	a.layout.RemoveItem(a.prompt)
	a.focusCurrentPage()
}

func (a *App) setupInputCapture() {
	a.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		current := a.pages.Current()

		if event.Key() == tcell.KeyEscape {
			if a.promptOn {
				// The prompt's own done func handles it.
				return event
			}
			if current == pageThread && a.app.GetFocus() == a.thread.Composer() {
				a.app.SetFocus(a.thread.Messages())
				return nil
			}
			if a.pages.Depth() > 1 {
				a.pages.Pop()
				a.focusCurrentPage()
				return nil
			}
			return event
		}

		// Let text input widgets handle all other keys normally.
		if _, ok := a.app.GetFocus().(*tview.InputField); ok {
			return event
		}

		if event.Key() == tcell.KeyRune {
			switch event.Rune() {
			case ':':
				a.activatePrompt(ui.PromptCommand)
				return nil
			case '/':
				if current == pageConversations {
					a.activatePrompt(ui.PromptFilter)
					return nil
				}
			case '0':
				if current == pageConversations {
					a.vm.SetFilter("")
					a.convList.Update(a.vm.Rows(), a.vm.TotalEntries(), "")
					return nil
				}
			case '1', '2', '3', '4', '5', '6', '7', '8', '9':
				if current == pageConversations {
					n, _ := strconv.Atoi(string(event.Rune()))
					if r := a.convList.RowByIndex(n); r != nil {
						a.openRow(*r)
					}
					return nil
				}
			}
		}

		if a.registry.HandleEvent(current, event) {
			return nil
		}
		return event
	})
}

func (a *App) focusCurrentPage() {
	switch a.pages.Current() {
	case pageConversations:
		a.app.SetFocus(a.convList)
	case pageThread:
		a.app.SetFocus(a.thread.Messages())
	case pageSearch:
		a.app.SetFocus(a.searchV.Input())
	case pagePair:
		a.app.SetFocus(a.pairV.Input())
	case pageOnboarding:
		a.app.SetFocus(a.onboardV.Input())
	case pageHelp:
		a.app.SetFocus(a.helpV)
	case pageDetails:
		a.app.SetFocus(a.detailsV)
	}
}

func (a *App) openRow(row model.ChatRow) {
	go func() {
		if err := a.vm.OpenChat(row); err != nil {
			a.vm.Flash.Err(err)
			a.app.QueueUpdateDraw(a.renderFlash)
			return
		}
		a.app.QueueUpdateDraw(func() {
			a.thread.SetChat(a.vm.ActiveChatID(), row.Name)
			a.thread.Update(a.vm.Messages())
			a.pages.Push(pageThread)
			a.app.SetFocus(a.thread.Messages())
		})
	}()
}

func (a *App) openChatID(chatID string) {
	go func() {
		chat, err := a.vm.GetChat(chatID)
		if err != nil || chat == nil {
			a.vm.Flash.Warn("Chat not found")
			a.app.QueueUpdateDraw(a.renderFlash)
			return
		}
		a.openRow(model.ChatRow{
			ChatID: chat.ChatID,
			PeerID: chat.PeerID,
			Name:   chat.PeerName,
		})
	}()
}

func (a *App) showPair() {
	code, err := a.vm.OwnPairCode()
	if err != nil {
		a.pairV.ShowError(err.Error())
	} else {
		a.pairV.ShowCode(code)
	}
	a.pages.Push(pagePair)
	a.app.SetFocus(a.pairV.Input())
}

func (a *App) showDetails() {
	chatID := a.vm.ActiveChatID()
	if chatID == "" {
		return
	}
	go func() {
		chat, err := a.vm.GetChat(chatID)
		if err != nil || chat == nil {
			return
		}
		a.app.QueueUpdateDraw(func() {
			a.detailsV.Update(chat, "")
			a.pages.Push(pageDetails)
			a.app.SetFocus(a.detailsV)
		})
	}()
}

func (a *App) showSearch(query string) {
	a.searchV.SetQuery(query)
	a.pages.Push(pageSearch)
	a.app.SetFocus(a.searchV.Input())
}

func (a *App) runCommand(cmd Command) {
	switch cmd.Name {
	case "quit", "q":
		a.Stop()
	case "help", "h":
		a.pages.Push(pageHelp)
	case "pair":
		a.showPair()
	case "search":
		a.showSearch(cmd.Args)
	case "chat":
		if r := a.convList.RowByName(cmd.Args); r != nil {
			a.openRow(*r)
		} else {
			a.vm.Flash.Warn("No chat named " + cmd.Args)
			a.renderFlash()
		}
	case "alias":
		parts := ParseCommand(cmd.Args)
		if parts.Name == "" || parts.Args == "" {
			a.vm.Flash.Warn("usage: :alias <peer-id> <name>")
			a.renderFlash()
			return
		}
		go func() {
			if err := a.vm.SetAlias(parts.Name, parts.Args); err != nil {
				a.vm.Flash.Err(err)
			} else {
				a.vm.Flash.Info("Alias set")
				_ = a.vm.Reload()
			}
			a.app.QueueUpdateDraw(func() {
				a.renderFlash()
				a.refreshCurrentPage()
			})
		}()
	default:
		a.vm.Flash.Warn("Unknown command: " + cmd.Name)
		a.renderFlash()
	}
}

// Run starts the TUI application.
func (a *App) Run() error {
	go a.bootstrap()
	return a.app.Run()
}

func (a *App) bootstrap() {
	if err := a.vm.LoadProfile(); err != nil {
		a.logger.Error("load profile", zap.Error(err))
		_ = a.machine.Transition(status.Error)
		return
	}

	if a.vm.Profile() == nil {
		_ = a.machine.Transition(status.ProfileRequired)
		a.app.QueueUpdateDraw(func() {
			a.pages.Reset(pageOnboarding)
			a.app.SetFocus(a.onboardV.Input())
			a.renderStatus()
		})
	} else {
		_ = a.machine.Transition(status.Ready)
		_ = a.vm.Reload()
		a.app.QueueUpdateDraw(func() {
			a.pages.Reset(pageConversations)
			a.refreshCurrentPage()
			a.app.SetFocus(a.convList)
		})
	}

	a.startRefreshLoop()
}

// startRefreshLoop redraws on bus events and on a slow tick for the
// clock and flash expiry.
func (a *App) startRefreshLoop() {
	events, unsub := a.bus.Subscribe("", 64)
	ticker := time.NewTicker(2 * time.Second)

	go func() {
		defer ticker.Stop()
		defer unsub()
		for {
			select {
			case evt := <-events:
				a.handleEvent(evt)
				a.refresh()
			case <-ticker.C:
				a.refresh()
			case <-a.ctx.Done():
				return
			}
		}
	}()
}

func (a *App) handleEvent(evt bus.Event) {
	switch evt.Kind {
	case bus.KindMessageSendFailed:
		if a.machine.Current() == status.Ready {
			_ = a.machine.Transition(status.Degraded)
		}
	case bus.KindMessageSendAck:
		if a.machine.Current() == status.Degraded {
			_ = a.machine.Transition(status.Ready)
		}
	}
}

func (a *App) refresh() {
	if a.vm.Profile() == nil {
		a.app.QueueUpdateDraw(a.renderStatus)
		return
	}
	if err := a.vm.Reload(); err != nil {
		a.logger.Warn("reload failed", zap.Error(err))
		return
	}
	if chatID := a.vm.ActiveChatID(); chatID != "" && a.pages.Current() == pageThread {
		_ = a.vm.LoadMessages(chatID)
	}
	a.app.QueueUpdateDraw(func() {
		a.refreshCurrentPage()
		a.renderStatus()
	})
}

func (a *App) refreshCurrentPage() {
	switch a.pages.Current() {
	case pageConversations:
		a.convList.Update(a.vm.Rows(), a.vm.TotalEntries(), a.vm.Filter())
	case pageThread:
		a.thread.Update(a.vm.Messages())
	}
	a.renderStatus()
}

func (a *App) renderStatus() {
	a.statusBar.SetStatus(string(a.machine.Current()))
	a.renderFlash()

	data := &ui.SessionData{
		Session: a.session,
		Status:  string(a.machine.Current()),
		Uptime:  time.Since(a.startedAt),
	}
	if p := a.vm.Profile(); p != nil {
		data.UserID = p.UserID
	}
	data.ChatCount, data.MessageCount = a.vm.Counters()
	a.info.Update(data)
}

func (a *App) renderFlash() {
	a.statusBar.SetFlash(a.vm.Flash.Get())
	a.flashBar.Update(a.vm.Flash.GetMessage())
}

// Stop gracefully shuts down the TUI.
func (a *App) Stop() {
	a.cancel()
	a.app.Stop()
}
