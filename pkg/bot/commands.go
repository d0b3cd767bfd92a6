package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/officehours/officehours/pkg/notification"
	"github.com/officehours/officehours/pkg/schedule"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultStartTime = "9:00AM"
	DefaultEndTime   = "5:00PM"
	defaultReason    = "Closed"

	permissionDenied = "❌ You need administrator permissions to use this command."
)

type OptionKind int

const (
	StringOption OptionKind = iota
	DayOption
	ChannelOption
	RoleOption
)

type OptionSpec struct {
	Name        string
	Description string
	Kind        OptionKind
	Required    bool
}

type CommandSpec struct {
	Name        string
	Description string
	AdminOnly   bool
	Options     []OptionSpec
}

// Request is a command invocation independent of the chat transport.
type Request struct {
	User    string
	IsAdmin bool
	Options map[string]string
}

func (r Request) option(name, fallback string) string {
	if value := strings.TrimSpace(r.Options[name]); value != "" {
		return value
	}
	return fallback
}

type Response struct {
	Content   string
	Ephemeral bool
}

type handlerFunc func(ctx context.Context, req Request) (Response, error)

type command struct {
	spec CommandSpec
	run  handlerFunc
}

// Commands implements the slash commands on top of the schedule and notification services.
type Commands struct {
	schedule      schedule.Service
	notifications notification.Service
	title         string
	commands      map[string]command
	order         []string
}

func NewCommands(scheduleService schedule.Service, notifications notification.Service, title string) *Commands {
	c := &Commands{
		schedule:      scheduleService,
		notifications: notifications,
		title:         title,
		commands:      make(map[string]command),
	}

	day := OptionSpec{Name: "day", Description: "Day of the week", Kind: DayOption, Required: true}
	date := OptionSpec{Name: "date", Description: "Date as MM/DD", Kind: StringOption, Required: true}
	start := OptionSpec{Name: "start_time", Description: "Start time, e.g. 14:00 or 9:00AM (defaults to 9:00 AM)", Kind: StringOption}
	end := OptionSpec{Name: "end_time", Description: "End time, e.g. 17:00 or 5:00PM (defaults to 5:00 PM)", Kind: StringOption}
	reason := OptionSpec{Name: "reason", Description: "Optional reason for the change", Kind: StringOption}

	c.register(CommandSpec{Name: "hours", Description: "Show office hours; shows next week from Friday 17:00 and on weekends"}, c.hours)
	c.register(CommandSpec{Name: "set_default", Description: "Set default time for a weekday", AdminOnly: true,
		Options: []OptionSpec{day, start, end}}, c.setDefault)
	c.register(CommandSpec{Name: "change_hours", Description: "Change hours for a weekday", AdminOnly: true,
		Options: []OptionSpec{day, start, end, reason}}, c.changeHours("updated hours for", "Updated hours for"))
	c.register(CommandSpec{Name: "open_day", Description: "Open a weekday with custom hours", AdminOnly: true,
		Options: []OptionSpec{day, start, end, reason}}, c.changeHours("opened", "Opened"))
	c.register(CommandSpec{Name: "close_day", Description: "Close a weekday with a reason", AdminOnly: true,
		Options: []OptionSpec{day, {Name: "reason", Description: "Reason for closing (e.g. Holiday)", Kind: StringOption}}}, c.closeDay)
	c.register(CommandSpec{Name: "set_override", Description: "Override the hours of one date", AdminOnly: true,
		Options: []OptionSpec{date, day, start, end, reason}}, c.setOverride)
	c.register(CommandSpec{Name: "set_week_override", Description: "Override a weekday for the week containing a date", AdminOnly: true,
		Options: []OptionSpec{date, day, start, end, reason}}, c.setWeekOverride)
	c.register(CommandSpec{Name: "change_message", Description: "Set the message template for office hours updates", AdminOnly: true,
		Options: []OptionSpec{{Name: "message", Description: "Template using {user}, {action} and {details}", Kind: StringOption, Required: true}}}, c.changeMessage)
	c.register(CommandSpec{Name: "set_channel", Description: "Set the channel for office hours update notifications", AdminOnly: true,
		Options: []OptionSpec{{Name: "channel", Description: "The channel to post updates to", Kind: ChannelOption, Required: true}}}, c.setChannel)
	c.register(CommandSpec{Name: "set_role", Description: "Set the role to ping for office hours updates", AdminOnly: true,
		Options: []OptionSpec{{Name: "role", Description: "The role to ping on updates", Kind: RoleOption, Required: true}}}, c.setRole)
	c.register(CommandSpec{Name: "help", Description: "Show help information for all commands"}, c.help)
	c.register(CommandSpec{Name: "test", Description: "Test if the bot is working", AdminOnly: true}, c.test)
	return c
}

func (c *Commands) register(spec CommandSpec, run handlerFunc) {
	c.commands[spec.Name] = command{spec: spec, run: run}
	c.order = append(c.order, spec.Name)
}

// Specs lists the commands in registration order.
func (c *Commands) Specs() []CommandSpec {
	specs := make([]CommandSpec, 0, len(c.order))
	for _, name := range c.order {
		specs = append(specs, c.commands[name].spec)
	}
	return specs
}

// Handle runs the named command. Failures are reported to the caller as ephemeral replies.
func (c *Commands) Handle(ctx context.Context, name string, req Request) Response {
	cmd, ok := c.commands[name]
	if !ok {
		return Response{Content: "❌ Unknown command: " + name, Ephemeral: true}
	}
	if cmd.spec.AdminOnly && !req.IsAdmin {
		log.Debugf("user %s is not allowed to run %s", req.User, name)
		return Response{Content: permissionDenied, Ephemeral: true}
	}

	resp, err := cmd.run(schedule.WithActor(ctx, req.User), req)
	if err != nil {
		log.Warnf("command %s by %s failed: %v", name, req.User, err)
		return Response{Content: "❌ Error: " + err.Error(), Ephemeral: true}
	}
	return resp
}

func (c *Commands) hours(ctx context.Context, req Request) (Response, error) {
	weekStart := c.schedule.DisplayWeekStart()
	heading := "**Current Week's Schedule**"
	if weekStart.After(c.schedule.CurrentWeekStart()) {
		heading = "**Next Week's Schedule**"
	}
	days, err := c.schedule.EffectiveWeek(ctx, weekStart)
	if err != nil {
		return Response{}, err
	}
	return Response{Content: heading + "\n" + notification.FormatWeek(c.title, days)}, nil
}

func (c *Commands) setDefault(ctx context.Context, req Request) (Response, error) {
	day, err := schedule.NormalizeDay(req.Options["day"])
	if err != nil {
		return Response{}, err
	}
	value := timeRange(req)
	if _, err := c.schedule.SetDefault(schedule.WithAction(ctx, "updated default hours for"), day, value); err != nil {
		return Response{}, err
	}
	return Response{Content: fmt.Sprintf("✅ Set default for %s: %s", day, value)}, nil
}

func (c *Commands) changeHours(action, verb string) handlerFunc {
	return func(ctx context.Context, req Request) (Response, error) {
		day, err := schedule.NormalizeDay(req.Options["day"])
		if err != nil {
			return Response{}, err
		}
		value := schedule.WithReason(timeRange(req), req.Options["reason"])
		if _, err := c.schedule.SetDefault(schedule.WithAction(ctx, action), day, value); err != nil {
			return Response{}, err
		}
		return Response{Content: fmt.Sprintf("✅ %s %s: %s", verb, day, value)}, nil
	}
}

func (c *Commands) closeDay(ctx context.Context, req Request) (Response, error) {
	day, err := schedule.NormalizeDay(req.Options["day"])
	if err != nil {
		return Response{}, err
	}
	reason := req.option("reason", defaultReason)
	value := schedule.WithReason(schedule.ClosedLabel, reason)
	if _, err := c.schedule.SetDefault(schedule.WithAction(ctx, "closed"), day, value); err != nil {
		return Response{}, err
	}
	return Response{Content: fmt.Sprintf("✅ Closed %s: %s", day, reason)}, nil
}

func (c *Commands) setOverride(ctx context.Context, req Request) (Response, error) {
	day, err := schedule.NormalizeDay(req.Options["day"])
	if err != nil {
		return Response{}, err
	}
	key, err := schedule.NormalizeDateKey(req.Options["date"])
	if err != nil {
		return Response{}, err
	}
	value := schedule.WithReason(timeRange(req), req.Options["reason"])
	if _, err := c.schedule.SetOverride(schedule.WithAction(ctx, "set an override for"), key, day, value); err != nil {
		return Response{}, err
	}
	return Response{Content: fmt.Sprintf("✅ Set override for %s %s: %s", day, key, value)}, nil
}

func (c *Commands) setWeekOverride(ctx context.Context, req Request) (Response, error) {
	day, err := schedule.NormalizeDay(req.Options["day"])
	if err != nil {
		return Response{}, err
	}
	monday, err := c.schedule.WeekStartFor(req.Options["date"])
	if err != nil {
		return Response{}, err
	}
	key := schedule.DateKey(monday)
	value := schedule.WithReason(timeRange(req), req.Options["reason"])
	if _, err := c.schedule.SetWeek(schedule.WithAction(ctx, "set a weekly override for"), key, map[string]string{day: value}); err != nil {
		return Response{}, err
	}
	return Response{Content: fmt.Sprintf("✅ Set %s for the week of %s: %s", day, key, value)}, nil
}

func (c *Commands) changeMessage(ctx context.Context, req Request) (Response, error) {
	settings, err := c.notifications.SetMessage(ctx, req.Options["message"])
	if err != nil {
		return Response{}, err
	}
	return Response{Content: "✅ Update message set to: " + settings.UpdateMessage}, nil
}

func (c *Commands) setChannel(ctx context.Context, req Request) (Response, error) {
	channelID := req.Options["channel"]
	if channelID == "" {
		return Response{}, fmt.Errorf("channel is required")
	}
	if _, err := c.notifications.SetChannel(ctx, channelID); err != nil {
		return Response{}, err
	}
	return Response{Content: "✅ Update channel set to: <#" + channelID + ">"}, nil
}

func (c *Commands) setRole(ctx context.Context, req Request) (Response, error) {
	roleID := req.Options["role"]
	if roleID == "" {
		return Response{}, fmt.Errorf("role is required")
	}
	if _, err := c.notifications.SetRole(ctx, roleID); err != nil {
		return Response{}, err
	}
	return Response{Content: "✅ Update role set to: " + notification.RoleMention(roleID)}, nil
}

func (c *Commands) help(ctx context.Context, req Request) (Response, error) {
	var b strings.Builder
	b.WriteString("# 🤖 Office Hours Bot - Help\n\n## 📋 **Viewing Commands**\n")
	for _, spec := range c.Specs() {
		if !spec.AdminOnly {
			writeHelpLine(&b, spec)
		}
	}
	b.WriteString("\n## ⚙️ **Administrator Commands**\n")
	for _, spec := range c.Specs() {
		if spec.AdminOnly {
			writeHelpLine(&b, spec)
		}
	}
	b.WriteString("\n## 🕐 **Time Format Examples**\n- `9:00AM`, `2:30PM`, `14:30`, `2PM`\n")
	b.WriteString("\n## 📅 **Date Format Examples**\n- `09/16`, `9/16`, `12/25`\n")
	return Response{Content: b.String(), Ephemeral: true}, nil
}

func writeHelpLine(b *strings.Builder, spec CommandSpec) {
	b.WriteString("- `/" + spec.Name + "` - " + spec.Description + "\n")
}

func (c *Commands) test(ctx context.Context, req Request) (Response, error) {
	return Response{Content: "🤖 Bot is working! Use `/hours` to see the current schedule."}, nil
}

func timeRange(req Request) string {
	return schedule.FormatTimeRange(req.option("start_time", DefaultStartTime), req.option("end_time", DefaultEndTime))
}
