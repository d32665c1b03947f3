package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/marmos91/dittostore/internal/protocol/rop"
	"github.com/marmos91/dittostore/pkg/logon"
	"github.com/marmos91/dittostore/pkg/server"
)

var (
	logonUser    string
	logonMailbox string
	logonPublic  bool
	logonAdmin   bool

	logonCmd = &cobra.Command{
		Use:   "logon",
		Short: "Perform a logon against the configured stores and print the result",
		Long: "Opens the configured stores, logs on as --user and prints the logon response. " +
			"Private logons also print the receive folder table. The stores are closed afterwards.",
		RunE: runLogon,
	}
)

func init() {
	logonCmd.Flags().StringVar(&logonUser, "user", "", "Legacy DN of the caller")
	logonCmd.Flags().StringVar(&logonMailbox, "mailbox", "", "Legacy DN of the mailbox to open (default: the caller's)")
	logonCmd.Flags().BoolVar(&logonPublic, "public", false, "Log on to the public folders")
	logonCmd.Flags().BoolVar(&logonAdmin, "admin", false, "Request administrative privilege")
	_ = logonCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(logonCmd)
}

func runLogon(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	srv, err := server.New(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	defer func() { _ = srv.Close() }()

	req := &rop.LogonRequest{OpenFlags: logon.OpenUsePerMDBReplIDMapping, Essdn: logonMailbox}
	if logonPublic {
		req.OpenFlags |= logon.OpenPublic
	} else {
		req.LogonFlags = logon.FlagPrivate
	}
	if logonAdmin {
		req.OpenFlags |= logon.OpenUseAdminPrivilege
	}

	ctx := &rop.Context{Context: cmd.Context(), UserDN: logonUser, ClientAddr: "cli"}
	resp := srv.Handler().Logon(ctx, req)
	if resp.ReturnValue != rop.EcNone {
		if resp.ServerName != "" {
			return fmt.Errorf("logon failed: %s (server: %s)", resp.ReturnValue, resp.ServerName)
		}
		return fmt.Errorf("logon failed: %s", resp.ReturnValue)
	}
	ctx.SessionID = resp.SessionID

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Session:\t%s\n", resp.SessionID)
	fmt.Fprintf(w, "Response flags:\t0x%02x\n", uint8(resp.ResponseFlags))
	fmt.Fprintf(w, "Mailbox GUID:\t%s\n", resp.MailboxGUID)
	fmt.Fprintf(w, "REPLID:\t%d\n", resp.ReplID)
	fmt.Fprintf(w, "REPLGUID:\t%s\n", resp.ReplGUID)
	fmt.Fprintf(w, "Store state:\t0x%08x\n", resp.StoreState)
	for i, fid := range resp.FolderIDs {
		if !fid.IsZero() {
			fmt.Fprintf(w, "Folder %d:\t%s\n", i, fid)
		}
	}
	_ = w.Flush()

	if !logonPublic {
		table := srv.Handler().GetReceiveFolderTable(ctx, &rop.GetReceiveFolderTableRequest{})
		if table.ReturnValue == rop.EcNone {
			fmt.Println()
			w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "MESSAGE CLASS\tFOLDER\tLAST MODIFIED")
			for _, row := range table.Rows {
				class := row.MessageClass
				if class == "" {
					class = "(default)"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", class, row.FolderID, row.LastModified.Format("2006-01-02 15:04:05"))
			}
			_ = w.Flush()
		}
	}

	return releaseLogon(srv, ctx)
}

func releaseLogon(srv *server.StoreServer, ctx *rop.Context) error {
	if rv := srv.Handler().Release(ctx); rv != rop.EcNone {
		return fmt.Errorf("release failed: %s", rv)
	}
	return nil
}
