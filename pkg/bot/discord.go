package bot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/officehours/officehours/pkg/schedule"
	log "github.com/sirupsen/logrus"
)

var adminPermission int64 = discordgo.PermissionAdministrator

// DiscordBot exposes Commands as Discord slash commands and sends notifications
// through the same session.
type DiscordBot struct {
	session  *discordgo.Session
	commands *Commands
	guildID  string
	ctx      context.Context
}

// NewDiscordBot creates the session; nothing connects until Open.
func NewDiscordBot(token string, guildID string, commands *Commands) (*DiscordBot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds
	return &DiscordBot{
		session:  session,
		commands: commands,
		guildID:  guildID,
		ctx:      context.Background(),
	}, nil
}

// Open connects to the gateway and registers the slash commands. ctx is used for the
// commands handled while the bot is running.
func (b *DiscordBot) Open(ctx context.Context) error {
	b.ctx = ctx
	b.session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Infof("%s has connected to Discord", r.User.Username)
	})
	b.session.AddHandler(b.onInteraction)

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}

	synced, err := b.session.ApplicationCommandBulkOverwrite(b.session.State.User.ID, b.guildID, applicationCommands(b.commands.Specs()))
	if err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}
	log.Infof("Synced %d command(s)", len(synced))
	return nil
}

func (b *DiscordBot) Close() error {
	return b.session.Close()
}

// SendMessage implements notification.Sender.
func (b *DiscordBot) SendMessage(ctx context.Context, channelID string, content string) error {
	_, err := b.session.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx))
	return err
}

func (b *DiscordBot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	data := i.ApplicationCommandData()
	log.Debugf("received command %s", data.Name)

	resp := b.commands.Handle(b.ctx, data.Name, toRequest(i))

	var flags discordgo.MessageFlags
	if resp.Ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: resp.Content,
			Flags:   flags,
		},
	})
	if err != nil {
		log.Errorf("failed to respond to %s: %v", data.Name, err)
	}
}

func toRequest(i *discordgo.InteractionCreate) Request {
	req := Request{Options: make(map[string]string)}
	if i.Member != nil {
		req.IsAdmin = i.Member.Permissions&discordgo.PermissionAdministrator != 0
		req.User = memberName(i.Member)
	} else if i.User != nil {
		req.User = userName(i.User)
	}

	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Type {
		case discordgo.ApplicationCommandOptionChannel:
			req.Options[opt.Name] = opt.ChannelValue(nil).ID
		case discordgo.ApplicationCommandOptionRole:
			req.Options[opt.Name] = opt.RoleValue(nil, "").ID
		case discordgo.ApplicationCommandOptionString:
			req.Options[opt.Name] = opt.StringValue()
		default:
			req.Options[opt.Name] = fmt.Sprint(opt.Value)
		}
	}
	return req
}

func memberName(m *discordgo.Member) string {
	if m.Nick != "" {
		return m.Nick
	}
	if m.User != nil {
		return userName(m.User)
	}
	return ""
}

func userName(u *discordgo.User) string {
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}

func applicationCommands(specs []CommandSpec) []*discordgo.ApplicationCommand {
	commands := make([]*discordgo.ApplicationCommand, 0, len(specs))
	for _, spec := range specs {
		cmd := &discordgo.ApplicationCommand{
			Name:        spec.Name,
			Description: spec.Description,
		}
		if spec.AdminOnly {
			cmd.DefaultMemberPermissions = &adminPermission
		}
		for _, opt := range spec.Options {
			cmd.Options = append(cmd.Options, applicationCommandOption(opt))
		}
		commands = append(commands, cmd)
	}
	return commands
}

func applicationCommandOption(opt OptionSpec) *discordgo.ApplicationCommandOption {
	option := &discordgo.ApplicationCommandOption{
		Name:        opt.Name,
		Description: opt.Description,
		Required:    opt.Required,
	}
	switch opt.Kind {
	case ChannelOption:
		option.Type = discordgo.ApplicationCommandOptionChannel
		option.ChannelTypes = []discordgo.ChannelType{discordgo.ChannelTypeGuildText}
	case RoleOption:
		option.Type = discordgo.ApplicationCommandOptionRole
	case DayOption:
		option.Type = discordgo.ApplicationCommandOptionString
		for _, day := range schedule.Weekdays {
			option.Choices = append(option.Choices, &discordgo.ApplicationCommandOptionChoice{Name: day, Value: day})
		}
	default:
		option.Type = discordgo.ApplicationCommandOptionString
	}
	return option
}
