package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/launchdarkly/go-sdk-common/v3/ldcontext"
	ld "github.com/launchdarkly/go-server-sdk/v7"

	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/constants"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/facility"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/utils"
)

// Flag keys.
const (
	FlagCORSHighSecurity        = "cors_high_security"
	FlagFacilityPayloadShape    = "facility_payload_shape"
	FlagValidatePhoneWithTwilio = "validate_phone_with_twilio"
	FlagSendCompletionEmail     = "send_completion_email"
	FlagSendgridFromEmail       = "sendgrid_from_email"
	FlagUtilityAuthPollAttempts = "utility_auth_poll_attempts"
	FlagUsePostgresSessions     = "use_postgres_sessions"
)

const (
	LDConnectionTimeout = 5 * time.Second

	defaultAppName      = "dcarbon-portal"
	defaultAppPort      = "8080"
	defaultFromEmail    = "no-reply@dcarbon.solutions"
	defaultPollAttempts = 20
)

// build-time overrides, set with -ldflags
var (
	AppName             string
	UniqueRunNumber     string
	UniqueRunnerID      string
	LDServerContextKey  string
	LDServerContextKind string
)

type Config struct {
	AppName           string
	Env               string
	AppPort           string
	AppUrl            string
	DCarbonAPIBaseURL string

	DBUrl           string
	SessionSecret   []byte
	SessionTokenKey []byte
	SessionTTL      time.Duration

	SendgridAPIKey   string
	TwilioAccountSID string
	TwilioAuthToken  string

	UtilityAuthPollInterval time.Duration

	// Feature-flag snapshots
	LDFlag_CORSHighSecurity        bool
	LDFlag_FacilityPayloadShape    facility.PayloadShape
	LDFlag_ValidatePhoneWithTwilio bool
	LDFlag_SendCompletionEmail     bool
	LDFlag_SendgridFromEmail       string
	LDFlag_UtilityAuthPollAttempts int
	LDFlag_UsePostgresSessions     bool

	ldClient  *ld.LDClient
	ldContext ldcontext.Context
}

// ResolveAppName defaults the AppName ldflag for local runs and returns it.
func ResolveAppName() string {
	if AppName == "" {
		AppName = defaultAppName
	}
	return AppName
}

// LoadConfig reads ldflags, the environment, secrets and feature flags in
// that order. Missing required values are fatal.
func LoadConfig() *Config {
	//----------------------------------------------------------------------
	// 1) ldflags (defaulted for local runs)
	//----------------------------------------------------------------------
	ResolveAppName()
	if LDServerContextKind == "" {
		LDServerContextKind = "service"
	}
	if LDServerContextKey == "" {
		LDServerContextKey = AppName
	}
	utils.Logger.Info("Loading config for app: ", AppName)
	if UniqueRunNumber != "" || UniqueRunnerID != "" {
		utils.Logger.Debugf("Run %s on runner %s", UniqueRunNumber, UniqueRunnerID)
	}

	//----------------------------------------------------------------------
	// 2) .env + runtime environment vars
	//----------------------------------------------------------------------
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		utils.Logger.WithError(err).Warn("Could not parse .env file")
	}

	env := os.Getenv("ENV")
	if env == "" {
		env = constants.EnvDev
	}
	appPort := envOr("APP_PORT", defaultAppPort)
	if _, err := ParsePort(appPort); err != nil {
		utils.Logger.WithError(err).Fatal("APP_PORT env var is invalid")
	}
	appURL := os.Getenv("APP_URL_FROM_ANYWHERE")
	if appURL == "" {
		utils.Logger.Fatal("APP_URL_FROM_ANYWHERE env var is missing")
	}
	apiBase := envOr("DCARBON_API_BASE_URL", "")

	sessionTTL, err := time.ParseDuration(envOr("SESSION_TTL", "24h"))
	if err != nil {
		utils.Logger.WithError(err).Fatal("SESSION_TTL is not a duration")
	}
	pollInterval, err := time.ParseDuration(envOr("UTILITY_AUTH_POLL_INTERVAL", "3s"))
	if err != nil {
		utils.Logger.WithError(err).Fatal("UTILITY_AUTH_POLL_INTERVAL is not a duration")
	}

	//----------------------------------------------------------------------
	// 3) Secrets (BWS when configured, env otherwise)
	//----------------------------------------------------------------------
	secrets := loadSecrets(env)

	sessionSecret := secrets["SESSION_SECRET"]
	if sessionSecret == "" {
		utils.Logger.Fatal("SESSION_SECRET missing")
	}
	tokenKey, err := utils.DeriveKey([]byte(sessionSecret), "portal-session-token")
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to derive session token key")
	}

	//----------------------------------------------------------------------
	// 4) LaunchDarkly client & flags
	//----------------------------------------------------------------------
	ldClient := newLDClient(secrets["LD_SDK_KEY"])
	cfg := &Config{
		AppName:                 AppName,
		Env:                     env,
		AppPort:                 appPort,
		AppUrl:                  appURL,
		DCarbonAPIBaseURL:       apiBase,
		DBUrl:                   secrets["DATABASE_URL"],
		SessionSecret:           []byte(sessionSecret),
		SessionTokenKey:         tokenKey,
		SessionTTL:              sessionTTL,
		SendgridAPIKey:          secrets["SENDGRID_API_KEY"],
		TwilioAccountSID:        secrets["TWILIO_ACCOUNT_SID"],
		TwilioAuthToken:         secrets["TWILIO_AUTH_TOKEN"],
		UtilityAuthPollInterval: pollInterval,
		ldClient:                ldClient,
		ldContext:               ldcontext.NewWithKind(ldcontext.Kind(LDServerContextKind), LDServerContextKey),
	}
	cfg.snapshotFlags()

	if cfg.LDFlag_UsePostgresSessions && cfg.DBUrl == "" {
		utils.Logger.Fatal("use_postgres_sessions is on but DATABASE_URL is missing")
	}
	if cfg.LDFlag_SendCompletionEmail && cfg.SendgridAPIKey == "" {
		utils.Logger.Warn("send_completion_email is on but SENDGRID_API_KEY is missing; emails disabled")
		cfg.LDFlag_SendCompletionEmail = false
	}
	if cfg.LDFlag_ValidatePhoneWithTwilio && (cfg.TwilioAccountSID == "" || cfg.TwilioAuthToken == "") {
		utils.Logger.Warn("validate_phone_with_twilio is on but Twilio credentials are missing; syntax-only checks")
		cfg.LDFlag_ValidatePhoneWithTwilio = false
	}

	utils.Logger.Infof("Loaded config for %s (%s)", AppName, env)
	return cfg
}

var secretKeys = []string{
	"SESSION_SECRET",
	"DATABASE_URL",
	"LD_SDK_KEY",
	"SENDGRID_API_KEY",
	"TWILIO_ACCOUNT_SID",
	"TWILIO_AUTH_TOKEN",
}

func loadSecrets(env string) map[string]string {
	out := make(map[string]string, len(secretKeys))
	for _, k := range secretKeys {
		out[k] = os.Getenv(k)
	}
	if !utils.BWSConfigured() {
		utils.Logger.Info("BWS_ACCESS_TOKEN not set; reading secrets from the environment")
		return out
	}

	client, err := utils.NewSecretsClient()
	if err != nil {
		utils.Logger.WithError(err).Fatal("Init BWS client")
	}
	defer client.Close()

	appSecrets, err := client.ProjectSecrets(fmt.Sprintf("%s-%s", AppName, env))
	if err != nil {
		utils.Logger.WithError(err).Fatal("Fetch BWS secrets")
	}
	utils.Logger.Debugf("Fetching shared secrets from BWS for shared-%s", env)
	sharedSecrets, err := client.ProjectSecrets(fmt.Sprintf("shared-%s", env))
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to fetch shared secrets from BWS")
	}

	// app project wins over shared, both win over env
	for _, k := range secretKeys {
		if v := sharedSecrets[k]; v != "" {
			out[k] = v
		}
		if v := appSecrets[k]; v != "" {
			out[k] = v
		}
	}
	return out
}

func newLDClient(sdkKey string) *ld.LDClient {
	if sdkKey == "" {
		utils.Logger.Warn("LD_SDK_KEY missing; feature flags use offline defaults")
		client, err := ld.MakeCustomClient("", ld.Config{Offline: true}, 0)
		if err != nil {
			utils.Logger.WithError(err).Fatal("Failed to create offline LaunchDarkly client")
		}
		return client
	}
	client, err := ld.MakeClient(sdkKey, LDConnectionTimeout)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to create LaunchDarkly client")
	}
	if !client.Initialized() {
		_ = client.Close()
		utils.Logger.Fatal("LaunchDarkly client failed to initialize")
	}
	return client
}

func (c *Config) snapshotFlags() {
	c.LDFlag_CORSHighSecurity = c.boolFlag(FlagCORSHighSecurity, true)
	c.LDFlag_FacilityPayloadShape = c.payloadShape()
	c.LDFlag_ValidatePhoneWithTwilio = c.boolFlag(FlagValidatePhoneWithTwilio, false)
	c.LDFlag_SendCompletionEmail = c.boolFlag(FlagSendCompletionEmail, false)
	c.LDFlag_SendgridFromEmail = c.stringFlag(FlagSendgridFromEmail, defaultFromEmail)
	c.LDFlag_UtilityAuthPollAttempts = c.intFlag(FlagUtilityAuthPollAttempts, defaultPollAttempts)
	c.LDFlag_UsePostgresSessions = c.boolFlag(FlagUsePostgresSessions, false)

	utils.Logger.Debugf("%s flag: %t", FlagCORSHighSecurity, c.LDFlag_CORSHighSecurity)
	utils.Logger.Debugf("%s flag: %s", FlagFacilityPayloadShape, c.LDFlag_FacilityPayloadShape)
	utils.Logger.Debugf("%s flag: %t", FlagValidatePhoneWithTwilio, c.LDFlag_ValidatePhoneWithTwilio)
	utils.Logger.Debugf("%s flag: %t", FlagSendCompletionEmail, c.LDFlag_SendCompletionEmail)
	utils.Logger.Debugf("%s flag: %s", FlagSendgridFromEmail, c.LDFlag_SendgridFromEmail)
	utils.Logger.Debugf("%s flag: %d", FlagUtilityAuthPollAttempts, c.LDFlag_UtilityAuthPollAttempts)
	utils.Logger.Debugf("%s flag: %t", FlagUsePostgresSessions, c.LDFlag_UsePostgresSessions)
}

// FacilityPayloadShape re-evaluates the payload shape flag so it can be
// flipped without a restart.
func (c *Config) FacilityPayloadShape(context.Context) facility.PayloadShape {
	if c.ldClient == nil {
		return c.LDFlag_FacilityPayloadShape
	}
	return c.payloadShape()
}

func (c *Config) payloadShape() facility.PayloadShape {
	return facility.ParsePayloadShape(c.stringFlag(FlagFacilityPayloadShape, string(facility.ShapeMeterIDs)))
}

func (c *Config) boolFlag(key string, def bool) bool {
	if c.ldClient == nil {
		return def
	}
	v, err := c.ldClient.BoolVariation(key, c.ldContext, def)
	if err != nil {
		utils.Logger.WithError(err).Warnf("%s flag error; using default", key)
		return def
	}
	return v
}

func (c *Config) stringFlag(key, def string) string {
	if c.ldClient == nil {
		return def
	}
	v, err := c.ldClient.StringVariation(key, c.ldContext, def)
	if err != nil || v == "" {
		return def
	}
	return v
}

func (c *Config) intFlag(key string, def int) int {
	if c.ldClient == nil {
		return def
	}
	v, err := c.ldClient.IntVariation(key, c.ldContext, def)
	if err != nil || v <= 0 {
		return def
	}
	return v
}

// IsProduction reports whether ENV names a production deploy.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, constants.EnvProd)
}

func (c *Config) Close() {
	if c.ldClient != nil {
		if err := c.ldClient.Close(); err != nil {
			utils.Logger.WithError(err).Warn("LaunchDarkly client close failed")
		}
		c.ldClient = nil
	}
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// ParsePort validates APP_PORT-style values.
func ParsePort(s string) (int, error) {
	p, err := strconv.Atoi(s)
	if err != nil || p <= 0 || p > 65535 {
		return 0, fmt.Errorf("invalid port %q", s)
	}
	return p, nil
}
