package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/slmtnm/s3tui/internal/config"
)

type configureOptions struct {
	file   config.S3File
	output string
	force  bool
}

func newConfigureCmd() *cobra.Command {
	opts := &configureOptions{}

	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Write an s3cmd-compatible .s3cfg file",
		Long: `Common configurations:
  AWS S3:              your AWS credentials, host s3.amazonaws.com
  MinIO local:         minioadmin/minioadmin123, host localhost:9000
  Other S3-compatible: your service's endpoint and credentials`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := opts.write()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration saved to: %s\n", path)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.file.AccessKey, "access-key", "", "access key ID")
	f.StringVar(&opts.file.SecretKey, "secret-key", "", "secret access key")
	f.StringVar(&opts.file.HostBase, "host", "s3.amazonaws.com", "S3 endpoint host[:port]")
	f.StringVar(&opts.file.Region, "region", config.DefaultRegion, "bucket region")
	f.StringVarP(&opts.output, "output", "o", "", "file to write (default: ~/.s3cfg)")
	f.BoolVar(&opts.force, "force", false, "overwrite an existing file")
	_ = cmd.MarkFlagRequired("access-key")
	_ = cmd.MarkFlagRequired("secret-key")

	return cmd
}

func (o *configureOptions) write() (string, error) {
	f := o.file
	if strings.TrimSpace(f.AccessKey) == "" || strings.TrimSpace(f.SecretKey) == "" {
		return "", errors.New("access key and secret key cannot be empty")
	}

	// Set host bucket based on endpoint
	if f.HostBase == "s3.amazonaws.com" {
		f.HostBucket = "%(bucket)s.s3.amazonaws.com"
	} else {
		f.HostBucket = f.HostBase + "/%(bucket)s"
	}
	f.UseHTTPS = !strings.Contains(f.HostBase, "localhost") && !strings.Contains(f.HostBase, "127.0.0.1")

	path := o.output
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, ".s3cfg")
	}

	if _, err := os.Stat(path); err == nil && !o.force {
		return "", fmt.Errorf("%s already exists, use --force to overwrite", path)
	}

	if err := f.Save(path); err != nil {
		return "", err
	}
	return path, nil
}
