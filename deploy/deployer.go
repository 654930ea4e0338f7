// Package deploy sequences a single function deployment: package the code,
// create or update the function, then point the environment alias at the
// version that was just published.
package deploy

import (
	"context"
	"slices"

	"github.com/a-pavithraa/lambda-alias-deploy/archive"
	"github.com/a-pavithraa/lambda-alias-deploy/common"
)

// FunctionClient is the remote surface the deployer drives. It is satisfied
// by lambda.ServiceWrapper.
type FunctionClient interface {
	FunctionExists(ctx context.Context, name string) common.CheckResult
	AliasExists(ctx context.Context, name string, environment string) common.CheckResult
	CreateFunction(ctx context.Context, cfg common.DeploymentConfig, code []byte) (string, error)
	UpdateFunctionCode(ctx context.Context, name string, code []byte) (string, error)
	WaitForUpdate(ctx context.Context, name string) error
	UpdateFunctionConfiguration(ctx context.Context, cfg common.DeploymentConfig) error
	ListVersions(ctx context.Context, name string) ([]string, error)
	ListAliases(ctx context.Context, name string, version string) ([]common.AliasBinding, error)
	CreateAlias(ctx context.Context, name string, environment string, version string) error
	UpdateAlias(ctx context.Context, name string, environment string, version string) error
}

type Deployer struct {
	Client   FunctionClient
	Reporter Reporter
}

// Run performs one deployment. The returned state reflects how far the run
// got, including when an error is returned. Nothing is rolled back.
func (d Deployer) Run(ctx context.Context, cfg common.DeploymentConfig) (*common.DeploymentState, error) {
	state := &common.DeploymentState{}

	if err := d.pack(cfg, state); err != nil {
		return state, err
	}

	state.FunctionCheck = d.Client.FunctionExists(ctx, cfg.FunctionName)
	var err error
	switch state.FunctionCheck.Outcome {
	case common.NotFound:
		d.emit(Checked, "function does not exist", "function", cfg.FunctionName)
		err = d.create(ctx, cfg, state)
	case common.Exists:
		d.emit(Checked, "function exists", "function", cfg.FunctionName)
		err = d.update(ctx, cfg, state)
	default:
		return state, &common.CheckFailedError{Resource: "function " + cfg.FunctionName, Err: state.FunctionCheck.Cause}
	}
	if err != nil {
		return state, err
	}

	if err := d.resolveAlias(ctx, cfg, state); err != nil {
		return state, err
	}

	d.emit(Done, "deployment complete",
		"function", cfg.FunctionName, "alias", cfg.AliasName(), "version", state.Version)
	return state, nil
}

func (d Deployer) pack(cfg common.DeploymentConfig, state *common.DeploymentState) error {
	path, err := archive.Build(cfg.SourceDir, cfg.ArchivePath(), archive.Options{
		ExcludedDirs:  cfg.ExcludedDirs,
		ExcludedFiles: cfg.ExcludedFiles,
		OnEntry: func(name string) {
			d.emit(Start, "zipping", "file", name, "archive", cfg.ArchivePath())
		},
		OnSkip: func(name string, reason string) {
			d.emit(Start, "skipping symlink", "file", name, "reason", reason)
		},
	})
	if err != nil {
		return err
	}
	code, err := archive.Read(path)
	if err != nil {
		return err
	}
	state.ArchivePath = path
	state.Code = code
	d.emit(Packaged, "archive ready", "archive", path, "bytes", len(code))
	return nil
}

func (d Deployer) create(ctx context.Context, cfg common.DeploymentConfig, state *common.DeploymentState) error {
	d.emit(Checked, "creating function", "function", cfg.FunctionName)
	version, err := d.Client.CreateFunction(ctx, cfg, state.Code)
	if err != nil {
		return err
	}
	state.Version = version
	d.emit(Created, "created function", "function", cfg.FunctionName, "version", version)
	return nil
}

func (d Deployer) update(ctx context.Context, cfg common.DeploymentConfig, state *common.DeploymentState) error {
	// Known versions only feed the reuse report; a listing failure must not
	// block the update.
	known, err := d.Client.ListVersions(ctx, cfg.FunctionName)
	if err != nil {
		d.emit(Checked, "could not list existing versions", "function", cfg.FunctionName, "error", err)
	}
	state.KnownVersions = known

	d.emit(Checked, "updating function", "function", cfg.FunctionName)
	version, err := d.Client.UpdateFunctionCode(ctx, cfg.FunctionName, state.Code)
	if err != nil {
		return err
	}
	if err := d.Client.WaitForUpdate(ctx, cfg.FunctionName); err != nil {
		return err
	}
	if err := d.Client.UpdateFunctionConfiguration(ctx, cfg); err != nil {
		return err
	}
	state.Version = version
	state.VersionReused = slices.Contains(known, version)
	if state.VersionReused {
		d.emit(Updated, "code unchanged, platform returned an existing version",
			"function", cfg.FunctionName, "version", version)
	} else {
		d.emit(Updated, "updated function", "function", cfg.FunctionName, "version", version)
	}

	return d.guard(ctx, cfg, state)
}

// guard aborts the run when the published version already serves the target
// environment or a higher one.
func (d Deployer) guard(ctx context.Context, cfg common.DeploymentConfig, state *common.DeploymentState) error {
	aliases, err := d.Client.ListAliases(ctx, cfg.FunctionName, state.Version)
	if err != nil {
		return err
	}
	conflicts := conflictingAliases(cfg.Environment, state.Version, aliases)
	if len(conflicts) == 0 {
		return nil
	}
	d.emit(Aborted, "version already promoted, alias left unchanged",
		"version", state.Version, "aliases", conflicts, "environment", string(cfg.Environment))
	return &common.AliasGuardError{
		Environment: cfg.Environment,
		Version:     state.Version,
		Conflicts:   conflicts,
	}
}

// conflictingAliases returns the names of aliases bound to version that are in
// the forbidden set for env.
func conflictingAliases(env common.Environment, version string, aliases []common.AliasBinding) []string {
	forbidden := env.ForbiddenPriorAliases()
	var conflicts []string
	for _, alias := range aliases {
		if alias.FunctionVersion != version {
			continue
		}
		if slices.Contains(forbidden, common.Environment(alias.Name)) {
			conflicts = append(conflicts, alias.Name)
		}
	}
	return conflicts
}

func (d Deployer) resolveAlias(ctx context.Context, cfg common.DeploymentConfig, state *common.DeploymentState) error {
	alias := cfg.AliasName()
	state.AliasCheck = d.Client.AliasExists(ctx, cfg.FunctionName, alias)
	switch state.AliasCheck.Outcome {
	case common.Exists:
		if err := d.Client.UpdateAlias(ctx, cfg.FunctionName, alias, state.Version); err != nil {
			return err
		}
		d.emit(AliasResolved, "updated alias", "alias", alias, "version", state.Version)
	case common.NotFound:
		if err := d.Client.CreateAlias(ctx, cfg.FunctionName, alias, state.Version); err != nil {
			return err
		}
		d.emit(AliasResolved, "created alias", "alias", alias, "version", state.Version)
	default:
		return &common.CheckFailedError{
			Resource: "alias " + alias + " of " + cfg.FunctionName,
			Err:      state.AliasCheck.Cause,
		}
	}
	return nil
}

func (d Deployer) emit(state State, message string, attrs ...any) {
	if d.Reporter == nil {
		return
	}
	d.Reporter.Report(Event{State: state, Message: message, Attrs: attrs})
}
