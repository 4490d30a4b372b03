package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/pawsitive-dev/shelter-manager/backend/internal/config"
	"github.com/pawsitive-dev/shelter-manager/backend/internal/domain"
	"github.com/pawsitive-dev/shelter-manager/backend/internal/repository"
)

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	translator  ut.Translator
	mailChannel *amqp.Channel
	redisClient *redis.Client

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, mailCh *amqp.Channel, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		translator:  trans,
		mailChannel: mailCh,
		redisClient: rdb,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Route("/reset-password", func(r chi.Router) {
			r.Post("/require", h.RequireResetPassword)
			r.Post("/confirm", h.ConfirmResetPassword)
		})
	})

	// everything below requires a bearer token
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Route("/my-info", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
			r.Route("/update-email", func(r chi.Router) {
				r.Post("/require", h.RequireUpdateEmail)
				r.Post("/confirm", h.ConfirmUpdateEmail)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdministrator})).Post("/", h.CreateUser)
			r.Get("/", h.GetAllUserInfo)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.userInfo)
				r.Get("/", h.GetUserInfo)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole([]domain.Role{domain.RoleAdministrator})).Patch("/", h.UpdateUser)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole([]domain.Role{domain.RoleAdministrator})).Delete("/", h.DeleteUser)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdministrator})).Patch("/password", h.UpdateUserPassword)
			})
		})

		r.Route("/animals", func(r chi.Router) {
			r.Get("/", h.GetAllAnimals)
			r.With(h.myInfo).Get("/suggestions", h.GetAnimalSuggestions)
			r.With(h.RequiredRole([]domain.Role{domain.RoleCaretaker, domain.RoleAdministrator})).Post("/", h.CreateAnimal)
			r.Route("/{animalID}", func(r chi.Router) {
				r.Use(h.animalRecord)
				r.Get("/", h.GetAnimal)
				r.With(h.RequiredRole([]domain.Role{domain.RoleCaretaker, domain.RoleAdministrator})).Patch("/", h.UpdateAnimal)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdministrator})).Delete("/", h.DeleteAnimal)

				r.Route("/examinations", func(r chi.Router) {
					r.Get("/", h.GetAnimalExaminations)
					r.With(h.RequiredRole([]domain.Role{domain.RoleVeterinarian})).With(h.myInfo).Post("/", h.CreateExamination)
					r.Route("/{examinationID}", func(r chi.Router) {
						r.Use(h.examinationRecord)
						r.With(h.RequiredRole([]domain.Role{domain.RoleVeterinarian})).Patch("/", h.UpdateExamination)
						r.With(h.RequiredRole([]domain.Role{domain.RoleVeterinarian, domain.RoleAdministrator})).Delete("/", h.DeleteExamination)
					})
				})

				r.Route("/medications", func(r chi.Router) {
					r.Get("/", h.GetAnimalMedications)
					r.With(h.RequiredRole([]domain.Role{domain.RoleVeterinarian, domain.RoleCaretaker})).Post("/", h.CreateMedication)
					r.Route("/{medicationID}", func(r chi.Router) {
						r.Use(h.medicationRecord)
						r.With(h.RequiredRole([]domain.Role{domain.RoleVeterinarian, domain.RoleCaretaker})).Patch("/", h.UpdateMedication)
						r.With(h.RequiredRole([]domain.Role{domain.RoleVeterinarian, domain.RoleAdministrator})).Delete("/", h.DeleteMedication)
					})
				})
			})
		})

		r.Route("/reservations", func(r chi.Router) {
			r.With(h.myInfo).Get("/", h.GetReservations)
			r.Get("/user/{userID}", h.GetUserReservations)
			r.Get("/animal/{animalID}", h.GetAnimalReservations)
			r.With(h.myInfo).With(h.preventDeactivatedUser).Post("/", h.CreateReservation)
			r.Route("/{reservationID}", func(r chi.Router) {
				r.Use(h.reservationRecord)
				r.With(h.myInfo).Get("/", h.GetReservation)
				r.With(h.myInfo).Patch("/", h.PatchReservation)
			})
		})
	})
}
