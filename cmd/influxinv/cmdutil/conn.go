package cmdutil

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"influxinv/config"
	"influxinv/internal/influx"

	"github.com/spf13/cobra"
)

// ProfileFlags are the connection settings a profile can store.
type ProfileFlags struct {
	URL       string
	API       string
	Transport string
	Username  string
	Password  string
	Token     string
	Org       string
	Flux      bool
}

func (f *ProfileFlags) Bind(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.URL, "url", "", "InfluxDB base URL (e.g. http://localhost:8086)")
	flags.StringVar(&f.API, "api", "", "API version: v1 or v2 (default v2 when --token is set)")
	flags.StringVar(&f.Transport, "transport", "", "v1 transport: client or http (default client)")
	flags.StringVar(&f.Username, "username", "", "v1 username")
	flags.StringVar(&f.Password, "password", "", "v1 password")
	flags.StringVar(&f.Token, "token", "", "v2 API token")
	flags.StringVar(&f.Org, "org", "", "v2 organization")
	flags.BoolVar(&f.Flux, "flux", false, "List v2 measurements with Flux schema.measurements()")
}

// Profile converts the flags to a stored profile.
func (f *ProfileFlags) Profile() config.Context {
	return config.Context{
		URL:       strings.TrimSpace(f.URL),
		API:       strings.TrimSpace(f.API),
		Transport: strings.TrimSpace(f.Transport),
		Username:  f.Username,
		Password:  f.Password,
		Token:     f.Token,
		Org:       strings.TrimSpace(f.Org),
		Flux:      f.Flux,
	}
}

// ConnFlags are the flags every inventory command accepts.
type ConnFlags struct {
	ProfileFlags
	Container string
	Timeout   time.Duration
	Context   string

	bucket string
}

func (f *ConnFlags) Bind(cmd *cobra.Command) {
	f.ProfileFlags.Bind(cmd)
	flags := cmd.Flags()
	flags.StringVar(&f.Container, "database", "", "Database (v1) to inspect")
	flags.StringVar(&f.bucket, "bucket", "", "Bucket (v2) to inspect; alias of --database")
	flags.DurationVar(&f.Timeout, "timeout", 0, "Per-request timeout (0 uses the client default)")
	flags.StringVar(&f.Context, "context", "", "Connection profile to use")
}

// Conn is a resolved connection.
type Conn struct {
	Config    influx.Config
	Container string
	// Profile is the name of the profile that contributed settings, if any.
	Profile string
}

// ContainerFlag names the container flag matching the connection's API.
func (c Conn) ContainerFlag() string {
	if c.Config.API == influx.APIv2 {
		return "--bucket"
	}
	return "--database"
}

// Resolve merges the selected profile under the explicitly set flags and
// validates the result. Invalid combinations return a *UsageError.
func (f *ConnFlags) Resolve(cmd *cobra.Command) (Conn, error) {
	container, err := f.container(cmd)
	if err != nil {
		return Conn{}, err
	}
	cfg, err := config.Load()
	if err != nil {
		return Conn{}, err
	}
	name, profile, err := cfg.Resolve(strings.TrimSpace(f.Context))
	if err != nil {
		return Conn{}, Usagef("%v", err)
	}
	if name != "" {
		slog.Debug("using profile", "context", name)
	}

	merged := f.merge(cmd, profile)
	conn := Conn{Container: container, Profile: name}

	if merged.URL == "" {
		return Conn{}, Usagef("--url is required (or select a profile with --context)")
	}

	api := influx.API(strings.ToLower(merged.API))
	switch api {
	case "":
		api = influx.APIv1
		if merged.Token != "" {
			api = influx.APIv2
		}
	case influx.APIv1, influx.APIv2:
	default:
		return Conn{}, Usagef("invalid --api %q (want v1 or v2)", merged.API)
	}

	transport := influx.Transport(strings.ToLower(merged.Transport))
	switch transport {
	case "":
		transport = influx.TransportClient
	case influx.TransportClient, influx.TransportHTTP:
	default:
		return Conn{}, Usagef("invalid --transport %q (want client or http)", merged.Transport)
	}

	if api == influx.APIv2 && (merged.Token == "" || merged.Org == "") {
		return Conn{}, Usagef("--token and --org are required for the v2 API")
	}

	conn.Config = influx.Config{
		URL:       merged.URL,
		API:       api,
		Transport: transport,
		Username:  merged.Username,
		Password:  merged.Password,
		Token:     merged.Token,
		Org:       merged.Org,
		UseFlux:   merged.Flux,
		Timeout:   f.Timeout,
	}
	return conn, nil
}

// container reconciles --database and --bucket, which name the same thing.
func (f *ConnFlags) container(cmd *cobra.Command) (string, error) {
	db := strings.TrimSpace(f.Container)
	bucket := strings.TrimSpace(f.bucket)
	if !cmd.Flags().Changed("bucket") {
		return db, nil
	}
	if cmd.Flags().Changed("database") && db != bucket {
		return "", Usagef("--database %q and --bucket %q name different containers", db, bucket)
	}
	return bucket, nil
}

func (f *ConnFlags) merge(cmd *cobra.Command, profile config.Context) config.Context {
	out := profile
	set := func(name string) bool { return cmd.Flags().Changed(name) }
	flags := f.Profile()

	if set("url") {
		out.URL = flags.URL
	}
	if set("api") {
		out.API = flags.API
	}
	if set("transport") {
		out.Transport = flags.Transport
	}
	if set("username") {
		out.Username = flags.Username
	}
	if set("password") {
		out.Password = flags.Password
	}
	if set("token") {
		out.Token = flags.Token
	}
	if set("org") {
		out.Org = flags.Org
	}
	if set("flux") {
		out.Flux = flags.Flux
	}
	out.URL = strings.TrimSpace(out.URL)
	out.API = strings.TrimSpace(out.API)
	out.Transport = strings.TrimSpace(out.Transport)
	return out
}

// NewClient opens the query adapter for conn.
func NewClient(conn Conn) (influx.Client, error) {
	client, err := influx.New(conn.Config)
	if err != nil {
		return nil, fmt.Errorf("connect to influxdb: %w", err)
	}
	return client, nil
}
