// Package i18n holds the fixed French strings of the documents the server
// produces.
package i18n

import (
	"fmt"
	"time"
)

var fr = map[string]string{
	"quote.title":         "Offre pour votre évènement",
	"quote.information":   "INFORMATIONS",
	"quote.proposal":      "PROPOSITION",
	"quote.menus":         "Menus",
	"quote.estimate":      "DEVIS GLOBAL ESTIMATIF",
	"quote.who":           "Qui :",
	"quote.where":         "Où :",
	"quote.when":          "Quand :",
	"quote.guests":        "Nombre d'invités :",
	"quote.delivery_time": "Durée/heure de livraison :",
	"quote.off_menu":      "Plats hors menu",
	"quote.total":         "Total",
	"quote.signature":     "Signature: ________________________",
	"devis.menu":          "MENU",
	"devis.material":      "LOCATION VAISSELLE/MATERIEL",
	"devis.minerals":      "MINERALES",
	"devis.minerals_note": "Inclus location de machine, vaisselle jetable et consommables",
	"devis.alcohols":      "ALCOOLS",
	"devis.delivery":      "LIVRAISON",
	"devis.delivery_out":  "Livraison aller",
	"devis.delivery_back": "Livraison retour",
	"devis.service":       "SERVICE",
	"devis.cooks":         "Cuisiniers (%sh)",
	"devis.servers":       "Serveurs (%sh)",
	"note.drinks":         "Les boissons sont facturées selon la consommation.",
	"note.service":        "Seules les heures effectives de chaque serveur seront dans la facture finale (minimum 3 heures)",
	"note.guests":         "Le nombre d'invités est à confirmer au plus tard 5 jours avant la date de l'événement par e-mail.",
	"note.excluded":       "Dans ce devis global ne sont par prévus les frais suivants:",
	"note.no_minerals":    "- Boissons (minérales)",
	"note.room":           "- Infrastructure de la salle (tables, chaises, nappage et serviettes)",
	"note.decoration":     "- Décoration",
}

// T returns the French text of code, or code itself when unknown.
func T(code string) string {
	if s, ok := fr[code]; ok {
		return s
	}
	return code
}

// Tf formats the French text of code with args.
func Tf(code string, args ...any) string {
	return fmt.Sprintf(T(code), args...)
}

var (
	weekdays = [...]string{"dimanche", "lundi", "mardi", "mercredi", "jeudi", "vendredi", "samedi"}
	months   = [...]string{"janvier", "février", "mars", "avril", "mai", "juin", "juillet", "août", "septembre", "octobre", "novembre", "décembre"}
)

// LongDate renders "samedi 6 juin 2026".
func LongDate(t time.Time) string {
	return fmt.Sprintf("%s %d %s %d", weekdays[t.Weekday()], t.Day(), months[t.Month()-1], t.Year())
}

// Clock renders "18h30".
func Clock(t time.Time) string {
	return fmt.Sprintf("%02dh%02d", t.Hour(), t.Minute())
}
