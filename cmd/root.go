package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/tmedia/internal/adapters/mediawiki"
	"github.com/kamal-hamza/tmedia/internal/adapters/tracker"
	"github.com/kamal-hamza/tmedia/internal/core/ports"
	"github.com/kamal-hamza/tmedia/internal/core/services"
	"github.com/kamal-hamza/tmedia/pkg/appdir"
	"github.com/kamal-hamza/tmedia/pkg/config"
	"github.com/kamal-hamza/tmedia/pkg/logger"
	"github.com/kamal-hamza/tmedia/pkg/ui"
)

var (
	// Global state
	appDirs   *appdir.Dirs
	appConfig *config.Config
	appLog    = zerolog.Nop()

	// Adapters
	mediaRepo     ports.MediaRepository
	trackerClient ports.TrackerBackend
	ackHandler    ports.AckHandler

	// Services
	thumbnailService  *services.ThumbnailService
	submissionService *services.SubmissionService
	profileService    *services.ProfileService
	ackService        *services.AckService

	// Global flags
	configPathFlag string
	logLevelFlag   string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tmedia",
	Short: "tmedia - attach Wikimedia Commons media to tracker tickets",
	Long: ui.StyleTitle.Render("tmedia") + " - Ticket Media Manager\n\n" +
		"Search Wikimedia Commons by uploader or file name prefix, pick files,\n" +
		"and attach them to (or detach them from) tracker tickets.",
	SilenceUsage:      true,
	PersistentPreRunE: initializeApp,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, ui.FormatError(err.Error()))
		os.Exit(1)
	}
}

func init() {
	// Add subcommands
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(pickCmd)
	rootCmd.AddCommand(attachCmd)
	rootCmd.AddCommand(detachCmd)
	rootCmd.AddCommand(attachedCmd)
	rootCmd.AddCommand(thumbCmd)
	rootCmd.AddCommand(galleryCmd)
	rootCmd.AddCommand(ackCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().StringVar(&configPathFlag, "config", "", "Path to config file (default: XDG config dir)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error")
}

// offline commands only need paths and config, never the tracker
var offlineCommands = map[string]bool{
	"version": true,
	"config":  true,
	"doctor":  true,
	"clean":   true,
	"path":    true,
	"show":    true,
	"set":     true,
	"help":    true,
}

// initializeApp initializes the application components
func initializeApp(cmd *cobra.Command, args []string) error {
	d, err := appdir.New()
	if err != nil {
		return fmt.Errorf("failed to resolve directories: %w", err)
	}
	appDirs = d

	cfg, err := config.Load(configPath())
	if err != nil {
		return err
	}
	appConfig = cfg

	ui.SetTheme(appConfig.ColorTheme)

	level := appConfig.LogLevel
	if logLevelFlag != "" {
		level = logLevelFlag
	}
	appLog = logger.New(level)

	if offlineCommands[cmd.Name()] {
		return nil
	}
	return connect()
}

// connect builds the tracker and Mediawiki clients and the services on top
func connect() error {
	if err := appConfig.Validate(); err != nil {
		return err
	}
	if appConfig.SessionID == "" {
		appLog.Warn().Msg("session_id is not set; the tracker will treat requests as anonymous")
	}

	// Initialize adapters
	trk, err := tracker.NewClient(tracker.Options{
		BaseURL:   appConfig.TrackerURL,
		SessionID: appConfig.SessionID,
		UserAgent: appConfig.UserAgent,
		Timeout:   appConfig.RequestTimeout(),
	}, appLog)
	if err != nil {
		return err
	}
	trackerClient = trk
	ackHandler = trk

	mediaRepo = mediawiki.NewClient(mediawiki.Options{
		BaseURL:   appConfig.TrackerURL,
		SessionID: appConfig.SessionID,
		UserAgent: appConfig.UserAgent,
		Timeout:   appConfig.RequestTimeout(),
	}, appLog)

	// Initialize services
	thumbnailService = services.NewThumbnailService(mediaRepo, appConfig.ThumbWidth, appLog)
	submissionService = services.NewSubmissionService(trackerClient, appConfig.TrackerURL)
	profileService = services.NewProfileService(trackerClient)
	ackService = services.NewAckService(ackHandler, appConfig.AckAddPath, appConfig.AckRemovePath)

	return nil
}

// newBrowseService builds a per-session browse service reporting through notifier
func newBrowseService(notifier ports.Notifier) *services.BrowseService {
	search := services.NewSearchService(mediaRepo, notifier)
	return services.NewBrowseService(trackerClient, search, thumbnailService)
}

func configPath() string {
	if configPathFlag != "" {
		return configPathFlag
	}
	return appDirs.ConfigPath
}

// getContext returns a context cancelled on Ctrl+C
func getContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}
