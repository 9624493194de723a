package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"catering/internal/models"
	"catering/internal/reporting"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Styling
var (
	docStyle = lipgloss.NewStyle().Margin(1, 2)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#0a84ff")).
			Padding(0, 1)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#30d158")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#ff453a")).
			Padding(0, 1)
)

const (
	viewLogin       = "login"
	viewMain        = "main"
	viewDashboard   = "dashboard"
	viewOrders      = "orders"
	viewOrderDetail = "order_detail"
	viewTodaysMenu  = "todays_menu"
)

// Model defines the application state
type Model struct {
	mainMenu    list.Model
	ordersTable table.Model
	menuTable   table.Model
	dailyTable  table.Model
	username    textinput.Model
	password    textinput.Model
	spinner     spinner.Model
	client      *ApiClient

	orders      []models.Order
	orderDetail *models.Order
	summary     *reporting.Summary
	menuDate    string

	loading     bool
	currentView string
	message     string
	error       string
}

// item represents a list item
type item struct {
	title, desc string
}

// FilterValue implements list.Item interface
func (i item) FilterValue() string { return i.title }

// Title implements list.Item interface
func (i item) Title() string { return i.title }

// Description implements list.Item interface
func (i item) Description() string { return i.desc }

func initialModel(client *ApiClient) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	items := []list.Item{
		item{title: "Dashboard", desc: "Revenue, pending payments and top sellers for the last 7 days"},
		item{title: "Orders", desc: "Browse orders and update their status"},
		item{title: "Today's Menu", desc: "Dishes offered for pickup today"},
		item{title: "Exit", desc: "Exit the application"},
	}
	mainMenu := list.New(items, list.NewDefaultDelegate(), 60, 20)
	mainMenu.Title = "Catering Admin"

	ordersTable := table.New(
		table.WithColumns([]table.Column{
			{Title: "Order", Width: 18},
			{Title: "Customer", Width: 20},
			{Title: "Delivery", Width: 17},
			{Title: "Status", Width: 10},
			{Title: "Total", Width: 10},
		}),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	menuTable := table.New(
		table.WithColumns([]table.Column{
			{Title: "Dish", Width: 24},
			{Title: "Available", Width: 10},
			{Title: "Note", Width: 30},
		}),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	dailyTable := table.New(
		table.WithColumns([]table.Column{
			{Title: "Date", Width: 12},
			{Title: "Orders", Width: 7},
			{Title: "Revenue", Width: 10},
			{Title: "Tips", Width: 8},
			{Title: "7d avg", Width: 10},
		}),
		table.WithHeight(9),
	)

	username := textinput.New()
	username.Placeholder = "admin"
	username.CharLimit = 64
	username.Width = 30
	username.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 128
	password.Width = 30

	return Model{
		mainMenu:    mainMenu,
		ordersTable: ordersTable,
		menuTable:   menuTable,
		dailyTable:  dailyTable,
		username:    username,
		password:    password,
		spinner:     s,
		client:      client,
		currentView: viewLogin,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, textinput.Blink, tea.EnterAltScreen)
}

// Update handles UI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.mainMenu.SetSize(msg.Width-4, msg.Height-4)
		return m, nil
	case tea.KeyMsg:
		if model, cmd, handled := m.handleKey(msg); handled {
			return model, cmd
		}
	case loggedInMsg:
		m.loading = false
		m.error = ""
		m.currentView = viewMain
		return m, nil
	case summaryMsg:
		m.loading = false
		m.summary = msg.summary
		m.dailyTable.SetRows(dailyRows(msg.summary.Daily))
		return m, nil
	case ordersMsg:
		m.loading = false
		m.orders = msg.orders
		m.ordersTable.SetRows(orderRows(msg.orders))
		return m, nil
	case orderDetailMsg:
		m.loading = false
		m.orderDetail = msg.order
		return m, nil
	case todaysMenuMsg:
		m.loading = false
		m.menuDate = msg.date
		m.menuTable.SetRows(menuRows(msg.entries))
		return m, nil
	case errorMsg:
		m.loading = false
		m.error = msg.err
		return m, nil
	case confirmMsg:
		m.loading = false
		m.error = ""
		m.message = msg.message
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	switch m.currentView {
	case viewLogin:
		var cmds [2]tea.Cmd
		m.username, cmds[0] = m.username.Update(msg)
		m.password, cmds[1] = m.password.Update(msg)
		cmd = tea.Batch(cmds[:]...)
	case viewMain:
		m.mainMenu, cmd = m.mainMenu.Update(msg)
	case viewOrders:
		m.ordersTable, cmd = m.ordersTable.Update(msg)
	case viewTodaysMenu:
		m.menuTable, cmd = m.menuTable.Update(msg)
	}
	return m, cmd
}

// handleKey reacts to the keys each view binds. Unhandled keys fall through
// to the focused component.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit, true
	}

	if m.currentView == viewLogin {
		switch key {
		case "tab", "shift+tab", "up", "down":
			if m.username.Focused() {
				m.username.Blur()
				m.password.Focus()
			} else {
				m.password.Blur()
				m.username.Focus()
			}
			return m, nil, true
		case "enter":
			m.loading = true
			return m, login(m.client, m.username.Value(), m.password.Value()), true
		}
		return m, nil, false
	}

	switch key {
	case "q":
		return m, tea.Quit, true
	case "esc":
		m.message = ""
		m.error = ""
		switch m.currentView {
		case viewOrderDetail:
			m.currentView = viewOrders
			m.loading = true
			return m, fetchOrders(m.client), true
		case viewMain:
		default:
			m.currentView = viewMain
		}
		return m, nil, true
	case "enter":
		switch m.currentView {
		case viewMain:
			selected, ok := m.mainMenu.SelectedItem().(item)
			if !ok {
				return m, nil, true
			}
			m.loading = true
			switch selected.title {
			case "Exit":
				return m, tea.Quit, true
			case "Dashboard":
				m.currentView = viewDashboard
				return m, fetchSummary(m.client, reporting.Period7Days), true
			case "Orders":
				m.currentView = viewOrders
				return m, fetchOrders(m.client), true
			case "Today's Menu":
				m.currentView = viewTodaysMenu
				return m, fetchTodaysMenu(m.client, time.Now().Format(models.DateLayout)), true
			}
		case viewOrders:
			if order := m.selectedOrder(); order != nil {
				m.currentView = viewOrderDetail
				m.loading = true
				return m, fetchOrderDetails(m.client, order.ID), true
			}
			return m, nil, true
		}
	case "r", "d", "p":
		if m.currentView == viewOrderDetail && m.orderDetail != nil {
			status := map[string]models.OrderStatus{
				"r": models.OrderStatusReceived,
				"d": models.OrderStatusDelivered,
				"p": models.OrderStatusPaid,
			}[key]
			m.loading = true
			return m, setStatus(m.client, m.orderDetail.ID, status), true
		}
	}
	return m, nil, false
}

func (m Model) selectedOrder() *models.Order {
	i := m.ordersTable.Cursor()
	if i < 0 || i >= len(m.orders) {
		return nil
	}
	return &m.orders[i]
}

// View renders the UI
func (m Model) View() string {
	var b strings.Builder
	switch m.currentView {
	case viewLogin:
		b.WriteString(titleStyle.Render("Catering Admin Login") + "\n\n")
		b.WriteString("Username\n" + m.username.View() + "\n\n")
		b.WriteString("Password\n" + m.password.View() + "\n\n")
		b.WriteString("Press 'tab' to switch fields, 'enter' to log in, 'ctrl+c' to quit\n")
	case viewMain:
		b.WriteString(m.mainMenu.View())
	case viewDashboard:
		b.WriteString(titleStyle.Render("Dashboard") + "\n\n")
		if m.summary != nil {
			b.WriteString(summaryView(m.summary))
			b.WriteString("\n" + m.dailyTable.View() + "\n")
		}
		b.WriteString("\nPress 'esc' to go back\n")
	case viewOrders:
		b.WriteString(titleStyle.Render("Orders") + "\n\n")
		b.WriteString(m.ordersTable.View())
		b.WriteString("\nPress 'enter' to view details, 'esc' to go back\n")
	case viewOrderDetail:
		if m.orderDetail != nil {
			b.WriteString(orderDetailView(m.orderDetail))
		}
		b.WriteString("\nMark as (r)eceived, (d)elivered or (p)aid, 'esc' to go back\n")
	case viewTodaysMenu:
		b.WriteString(titleStyle.Render("Today's Menu "+m.menuDate) + "\n\n")
		b.WriteString(m.menuTable.View())
		b.WriteString("\nPress 'esc' to go back\n")
	default:
		b.WriteString("Loading...")
	}

	if m.loading {
		b.WriteString("\n" + m.spinner.View() + " Loading...\n")
	}
	if m.message != "" {
		b.WriteString("\n" + successStyle.Render(m.message) + "\n")
	}
	if m.error != "" {
		b.WriteString("\n" + errorStyle.Render(m.error) + "\n")
	}
	return docStyle.Render(b.String())
}

// Custom message types for the tea.Model
type loggedInMsg struct{}

type summaryMsg struct {
	summary *reporting.Summary
}

type ordersMsg struct {
	orders []models.Order
}

type orderDetailMsg struct {
	order *models.Order
}

type todaysMenuMsg struct {
	date    string
	entries []models.TodaysMenu
}

type errorMsg struct {
	err string
}

type confirmMsg struct {
	message string
}

func login(client *ApiClient, username, password string) tea.Cmd {
	return func() tea.Msg {
		if err := client.Login(username, password); err != nil {
			return errorMsg{err: fmt.Sprintf("Login failed: %v", err)}
		}
		return loggedInMsg{}
	}
}

func fetchSummary(client *ApiClient, period reporting.Period) tea.Cmd {
	return func() tea.Msg {
		summary, err := client.Dashboard(period)
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Error fetching dashboard: %v", err)}
		}
		return summaryMsg{summary: summary}
	}
}

// fetchOrders retrieves orders from the API
func fetchOrders(client *ApiClient) tea.Cmd {
	return func() tea.Msg {
		orders, err := client.GetOrders("")
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Error fetching orders: %v", err)}
		}
		return ordersMsg{orders: orders}
	}
}

// fetchOrderDetails retrieves details for a specific order
func fetchOrderDetails(client *ApiClient, id uint) tea.Cmd {
	return func() tea.Msg {
		order, err := client.GetOrder(id)
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Error fetching order details: %v", err)}
		}
		return orderDetailMsg{order: order}
	}
}

func setStatus(client *ApiClient, id uint, status models.OrderStatus) tea.Cmd {
	return tea.Sequence(
		func() tea.Msg {
			if _, err := client.SetOrderStatus(id, status); err != nil {
				return errorMsg{err: fmt.Sprintf("Error updating order: %v", err)}
			}
			return confirmMsg{message: fmt.Sprintf("Order marked %s", status)}
		},
		fetchOrderDetails(client, id),
	)
}

func fetchTodaysMenu(client *ApiClient, date string) tea.Cmd {
	return func() tea.Msg {
		entries, err := client.TodaysMenu(date)
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Error fetching today's menu: %v", err)}
		}
		return todaysMenuMsg{date: date, entries: entries}
	}
}

func orderRows(orders []models.Order) []table.Row {
	rows := make([]table.Row, len(orders))
	for i, order := range orders {
		delivery := strings.TrimSpace(order.DeliveryDate + " " + order.DeliveryTime)
		rows[i] = table.Row{
			order.OrderNumber,
			order.CustomerName,
			delivery,
			string(order.Status),
			"$" + order.AmountDue().StringFixed(2),
		}
	}
	return rows
}

func menuRows(entries []models.TodaysMenu) []table.Row {
	rows := make([]table.Row, 0, len(entries))
	for _, entry := range entries {
		name := fmt.Sprintf("item %d", entry.MenuItemID)
		if entry.MenuItem != nil {
			name = entry.MenuItem.Name
		}
		available := "no"
		if entry.IsAvailable {
			available = "yes"
		}
		rows = append(rows, table.Row{name, available, entry.SpecialNote})
	}
	return rows
}

func dailyRows(daily []reporting.DailyStat) []table.Row {
	rows := make([]table.Row, len(daily))
	for i, d := range daily {
		rows[i] = table.Row{
			d.Date,
			fmt.Sprintf("%d", d.Orders),
			"$" + d.Revenue.StringFixed(2),
			"$" + d.Tips.StringFixed(2),
			"$" + d.MovingAverage.StringFixed(2),
		}
	}
	return rows
}

func summaryView(s *reporting.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s to %s\n\n", infoStyle.Render(string(s.Period)), s.StartDate, s.EndDate)
	fmt.Fprintf(&b, "Revenue:   $%s (%d paid orders, avg $%s)\n", s.TotalRevenue.StringFixed(2), s.PaidCount, s.AverageOrderValue.StringFixed(2))
	fmt.Fprintf(&b, "Tips:      $%s\n", s.TotalTips.StringFixed(2))
	fmt.Fprintf(&b, "Pending:   $%s (%d orders)\n", s.PendingRevenue.StringFixed(2), s.PendingCount)
	if len(s.TopItems) > 0 {
		b.WriteString("\nTop dishes:\n")
		for i, it := range s.TopItems {
			fmt.Fprintf(&b, "%d. %s  $%s\n", i+1, it.Name, it.Total.StringFixed(2))
		}
	}
	if len(s.TopCustomers) > 0 {
		b.WriteString("\nTop customers:\n")
		for i, c := range s.TopCustomers {
			fmt.Fprintf(&b, "%d. %s  $%s\n", i+1, c.Name, c.Total.StringFixed(2))
		}
	}
	return b.String()
}

// orderDetailView creates a detailed view of an order
func orderDetailView(order *models.Order) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Order "+order.OrderNumber) + "\n\n")
	fmt.Fprintf(&b, "Customer: %s %s\n", order.CustomerName, order.CustomerPhone)
	if order.DeliveryDate != "" {
		fmt.Fprintf(&b, "Delivery: %s %s\n", order.DeliveryDate, order.DeliveryTime)
	}
	fmt.Fprintf(&b, "Status:   %s\n", order.Status)
	fmt.Fprintf(&b, "Created:  %s\n", order.CreatedAt.Local().Format(time.RFC1123))

	b.WriteString("\nItems:\n")
	for i, it := range order.Items {
		fmt.Fprintf(&b, "%d. %s, %s x%d  $%s\n", i+1, it.ItemName, it.SizeType.Label(), it.Quantity, it.TotalPrice.StringFixed(2))
		if it.SpecialInstructions != "" {
			fmt.Fprintf(&b, "   Notes: %s\n", it.SpecialInstructions)
		}
	}

	fmt.Fprintf(&b, "\nSubtotal: $%s\n", order.SubtotalAmount.StringFixed(2))
	if order.DiscountAmount.IsPositive() {
		fmt.Fprintf(&b, "Discount: -$%s\n", order.DiscountAmount.StringFixed(2))
	}
	if order.TipAmount.IsPositive() {
		fmt.Fprintf(&b, "Tip:      $%s\n", order.TipAmount.StringFixed(2))
	}
	fmt.Fprintf(&b, "Due:      $%s\n", order.AmountDue().StringFixed(2))
	return b.String()
}

func main() {
	client := NewApiClient()
	if err := client.CheckHealth(); err != nil {
		fmt.Printf("Warning: API server at %s is not available: %v\n", client.BaseURL, err)
	}

	p := tea.NewProgram(initialModel(client))
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running program: %v", err)
		os.Exit(1)
	}
}
