package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	geturl "github.com/frankli0324/go-geturl"
)

func NewRootCmd() *cobra.Command {
	var headers []string

	cmd := &cobra.Command{
		Use:           "get-url URL",
		Short:         "Fetch a URL and write the response body to stdout",
		Version:       geturl.Version,
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := geturl.NewRequest(args[0])
			for _, h := range headers {
				name, value, err := splitHeader(h)
				if err != nil {
					return err
				}
				req.SetHeader(name, value)
			}

			res, err := req.Open()
			if err != nil {
				return err
			}
			defer res.Close()
			_, err = io.Copy(cmd.OutOrStdout(), res)
			return err
		},
	}

	addFlags(cmd.Flags(), &headers)
	return cmd
}

func addFlags(fs *pflag.FlagSet, headers *[]string) {
	// -h is taken by --header, help stays available as --help
	fs.Bool("help", false, "help for get-url")
	fs.StringArrayVarP(headers, "header", "h", nil,
		"Specify an additional header to send, as name=value or name:value")
}

// splitHeader splits an argument on the first '=' or ':'.
func splitHeader(arg string) (name, value string, err error) {
	i := strings.IndexAny(arg, "=:")
	if i < 0 {
		return "", "", fmt.Errorf("got header without value: %q", arg)
	}
	if i == 0 {
		return "", "", fmt.Errorf("got header without name: %q", arg)
	}
	return arg[:i], arg[i+1:], nil
}
