package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"ampnm-backend/config"
	"ampnm-backend/internal/model"
	"ampnm-backend/internal/repository"
	"ampnm-backend/internal/session"
	"ampnm-backend/internal/usecase"

	"github.com/spf13/cobra"
)

var newUser usecase.NewUser

// usersCmd groups user management commands
var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage application users",
}

var listUsersCmd = &cobra.Command{
	Use:   "list",
	Short: "List all users",
	RunE: func(cmd *cobra.Command, args []string) error {
		uc, closeFn, err := userUsecase()
		if err != nil {
			return err
		}
		defer closeFn()

		users, err := uc.List(cmd.Context())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tUSERNAME\tEMAIL\tROLE")
		for _, u := range users {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", u.ID, u.Username, u.Email, u.Role)
		}
		return w.Flush()
	},
}

var addUserCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a user",
	Long:  `Add a user with the same validation the API applies (unique username and email, valid email, password of at least 6 characters).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		uc, closeFn, err := userUsecase()
		if err != nil {
			return err
		}
		defer closeFn()

		user, err := uc.Register(cmd.Context(), newUser)
		if err != nil {
			return err
		}
		fmt.Printf("User %s created with id %d and role %s.\n", user.Username, user.ID, user.Role)
		return nil
	},
}

func userUsecase() (*usecase.UserUsecase, func(), error) {
	db, err := config.ConnectDB(cfg.DB, config.AppModels...)
	if err != nil {
		return nil, nil, err
	}
	sessions, err := session.Open(cfg.Session.Backend, db, cfg.Session.BoltPath)
	if err != nil {
		return nil, nil, err
	}
	uc := usecase.NewUserUsecase(repository.NewUserRepository(db), sessions, 0)
	return uc, func() { sessions.Close() }, nil
}

func init() {
	addUserCmd.Flags().StringVar(&newUser.Username, "username", "", "Username (required)")
	addUserCmd.Flags().StringVar(&newUser.Email, "email", "", "E-mail address (required)")
	addUserCmd.Flags().StringVar(&newUser.Password, "password", "", "Password (required)")
	addUserCmd.Flags().StringVar(&newUser.Role, "role", model.RoleReadUser, "Role: admin, network_manager or read_user")
	_ = addUserCmd.MarkFlagRequired("username")
	_ = addUserCmd.MarkFlagRequired("email")
	_ = addUserCmd.MarkFlagRequired("password")

	usersCmd.AddCommand(listUsersCmd)
	usersCmd.AddCommand(addUserCmd)
}
