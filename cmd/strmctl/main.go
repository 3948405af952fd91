// strmctl pilote un serveur strmsync depuis le terminal: statuts et jobs de
// synchronisation, sélection des catégories, planification, logs, admin.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/Guilhem-Bonnet/strmsync-console/internal/app"
)

type rootCmd struct {
	Config   string `short:"c" long:"config" description:"Fichier de configuration YAML"`
	Server   string `short:"s" long:"server" description:"URL du backend strmsync"`
	DB       string `long:"db" description:"Chemin du store SQLite local"`
	Output   string `short:"o" long:"output" choice:"table" choice:"json" choice:"yaml" description:"Format de sortie (défaut: préférence enregistrée, sinon table)"`
	LogLevel string `long:"log-level" default:"warn" description:"Niveau de log sur stderr"`

	Login     loginCmd     `command:"login" description:"Ouvre une session sur le serveur"`
	Logout    logoutCmd    `command:"logout" description:"Ferme la session locale"`
	Whoami    whoamiCmd    `command:"whoami" description:"Affiche la session courante"`
	Version   versionCmd   `command:"version" description:"Affiche la version"`
	Prefs     prefsCmd     `command:"prefs" description:"Préférences d'affichage"`
	Stats     statsCmd     `command:"stats" description:"Compteurs du tableau de bord"`
	Status    statusCmd    `command:"status" description:"Statuts de synchronisation"`
	Sync      syncCmd      `command:"sync" description:"Démarre ou arrête une synchronisation"`
	Subs      subsCmd      `command:"subs" description:"Subscriptions Xtream"`
	M3U       m3uCmd       `command:"m3u" description:"Sources M3U"`
	Selection selectionCmd `command:"selection" description:"Sélection des catégories / groupes"`
	Schedule  scheduleCmd  `command:"schedule" description:"Planification automatique"`
	Logs      logsCmd      `command:"logs" description:"Flux de logs du serveur"`
	Admin     adminCmd     `command:"admin" description:"Actions destructives (avec confirmation)"`
}

var root rootCmd

func main() {
	parser := flags.NewParser(&root, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = "strmctl"

	if _, err := parser.Parse(); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) {
			if ferr.Type == flags.ErrHelp {
				fmt.Fprintln(os.Stdout, ferr.Message)
				return
			}
			fmt.Fprintln(os.Stderr, ferr.Message)
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "Error:", app.UserMessage(err, err.Error()))
		if code := app.ErrorCode(err); code != "" {
			fmt.Fprintln(os.Stderr, "Code:", code)
		}
		os.Exit(1)
	}
}
