package common

import "path/filepath"

// Environment is a deployment target. Its name doubles as the alias name.
type Environment string

const (
	Dev   Environment = "dev"
	Stage Environment = "stage"
	Prod  Environment = "prod"
)

// Environments lists the known targets from lowest to highest.
var Environments = []Environment{Dev, Stage, Prod}

func ParseEnvironment(s string) (Environment, bool) {
	for _, env := range Environments {
		if string(env) == s {
			return env, true
		}
	}
	return "", false
}

func (e Environment) rank() int {
	for i, env := range Environments {
		if env == e {
			return i
		}
	}
	return -1
}

// ForbiddenPriorAliases returns the aliases that must not already point at a
// version before it is promoted to e: e itself and every higher environment.
func (e Environment) ForbiddenPriorAliases() []Environment {
	r := e.rank()
	if r < 0 {
		return nil
	}
	return Environments[r:]
}

type DeploymentConfig struct {
	FunctionName  string
	Runtime       string
	Description   string
	Timeout       int
	MemorySize    int
	IAMRole       string
	Handler       string
	Region        string
	ExcludedDirs  []string
	ExcludedFiles []string
	Environment   Environment
	SourceDir     string
	OutputDir     string
}

// ArchivePath is where the deployment bundle for this function is written.
func (c DeploymentConfig) ArchivePath() string {
	return filepath.Join(c.OutputDir, c.FunctionName+".zip")
}

// WithRole returns a copy of c using roleArn as its execution role.
func (c DeploymentConfig) WithRole(roleArn string) DeploymentConfig {
	c.IAMRole = roleArn
	return c
}

// AliasName is always the environment name.
func (c DeploymentConfig) AliasName() string {
	return string(c.Environment)
}

type DeploymentState struct {
	ArchivePath   string
	Code          []byte
	FunctionCheck CheckResult
	AliasCheck    CheckResult
	Version       string
	KnownVersions []string
	VersionReused bool
}

type Outcome int

const (
	CheckFailed Outcome = iota
	Exists
	NotFound
)

func (o Outcome) String() string {
	switch o {
	case Exists:
		return "exists"
	case NotFound:
		return "not found"
	default:
		return "check failed"
	}
}

// CheckResult is the answer to an existence query. Cause is set only when
// Outcome is CheckFailed.
type CheckResult struct {
	Outcome Outcome
	Cause   error
}

func Found() CheckResult {
	return CheckResult{Outcome: Exists}
}

func Missing() CheckResult {
	return CheckResult{Outcome: NotFound}
}

func Failed(err error) CheckResult {
	return CheckResult{Outcome: CheckFailed, Cause: err}
}

type AliasBinding struct {
	Name            string
	FunctionVersion string
}
