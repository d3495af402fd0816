package cli

import (
	"os"

	"github.com/Solipath/Solipath/internal/command"
	"github.com/Solipath/Solipath/internal/depfile"
	"github.com/Solipath/Solipath/internal/directory"
	"github.com/Solipath/Solipath/internal/download"
	"github.com/Solipath/Solipath/internal/extractor"
	"github.com/Solipath/Solipath/internal/instructions"
	"github.com/Solipath/Solipath/internal/models"
	"github.com/Solipath/Solipath/internal/pipeline"
	"github.com/Solipath/Solipath/internal/platform"
	"github.com/Solipath/Solipath/internal/signature"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func stdio(cmd *cobra.Command) command.IO {
	return command.IO{In: cmd.InOrStdin(), Out: cmd.OutOrStdout(), Err: cmd.ErrOrStderr()}
}

func (a *app) dependencies() ([]models.Dependency, error) {
	logrus.Debugf("Reading dependencies from %s", a.cfg.DependencyFile)
	return depfile.Load(a.cfg.DependencyFile)
}

func (a *app) newDownloader() *download.Downloader {
	return download.New(
		download.WithAttempts(a.cfg.Download.Attempts),
		download.WithBackoff(a.cfg.Download.Backoff),
		download.WithTimeout(a.cfg.Download.Timeout),
	)
}

func (a *app) newPipeline(streams command.IO) (*pipeline.Pipeline, error) {
	finder := directory.New(a.cfg.Home)
	dl := a.newDownloader()

	var verifier download.SignatureVerifier
	if a.cfg.KeyringPath != "" {
		v, err := signature.NewPGPVerifier(a.cfg.KeyringPath)
		if err != nil {
			return nil, &models.SolipathError{Type: models.ErrInvalidConfig, Err: err}
		}
		verifier = v
	}

	fetcher := download.NewConditionalFetcher(dl, extractor.New(), verifier)

	return pipeline.New(pipeline.Options{
		Filter:    platform.NewCurrentFilter(),
		Finder:    finder,
		Resolver:  instructions.NewResolver(a.cfg.InstructionsURL, finder, fetcher),
		Fetcher:   fetcher,
		Installer: command.NewInstallRunner(finder, streams),
		Executor:  command.NewExecutor(streams),
		BaseEnv:   os.Environ(),
	}), nil
}
