package apperrors

import (
	"net/http"
)

/*
Этот файл содержит фабрики и предопределенные переменные
для общих ошибок бизнес-логики и домена.
Сервисы возвращают переменные как есть; WithDetails/WithError делают копию.
*/

// =========================================================================
// Фабричные ФУНКЦИИ (Используются для оборачивания ошибок, напр. из репозитория)
// =========================================================================

// ErrNotFound - фабрика для ошибки "не найдено" (404)
// Используется, когда ошибка репозитория (типа gorm.ErrRecordNotFound)
// должна быть преобразована в AppError.
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "resource", "Resource not found", http.StatusNotFound)
}

// ErrAlreadyExists - фабрика для ошибки "уже существует"
// Отдаем 400, а не 409: клиенты ждут ошибку валидации.
func ErrAlreadyExists(err error) *AppError {
	return Wrap(err, CodeAlreadyExists, "resource", "Resource already exists", http.StatusBadRequest)
}

// ErrConflict - общая фабрика для конфликтов (409)
func ErrConflict(err error, domain, message string) *AppError {
	return Wrap(err, CodeConflict, domain, message, http.StatusConflict)
}

// =========================================================================
// Фабричные ФУНКЦИИ (Для создания новых ошибок)
// =========================================================================

// ErrInvalidOperation - фабрика для невалидных операций (400)
func ErrInvalidOperation(domain, message string) *AppError {
	return New(CodeInvalidOperation, domain, message, http.StatusBadRequest)
}

// =========================================================================
// Предопределенные ПЕРЕМЕННЫЕ (Для частых, статичных ошибок)
// =========================================================================

// --- Auth ---

// ErrInvalidCredentials - неверный email или пароль при логине.
// Намеренно не уточняем, что именно не совпало.
var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Unable to log in with provided credentials",
	http.StatusBadRequest,
)

// ErrInvalidToken - токен не прошел проверку, истек или был отозван (logout)
var ErrInvalidToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid or expired token",
	http.StatusUnauthorized,
)

// ErrWrongPassword - используется в set_password, когда current_password не совпал
var ErrWrongPassword = New(
	CodeValidationFailed,
	"auth",
	"Current password is incorrect",
	http.StatusBadRequest,
)

var ErrTooManyRequests = New(
	CodeLimitExceeded,
	"auth",
	"Too many requests, try again later",
	http.StatusTooManyRequests, // 429 - отдает rate limiter на логине
)

// --- Users ---

var ErrUserNotFound = New(
	CodeNotFound,
	"user",
	"User not found",
	http.StatusNotFound,
)

var ErrEmailAlreadyExists = New(
	CodeAlreadyExists,
	"user",
	"A user with that email already exists",
	http.StatusBadRequest,
)

var ErrUsernameAlreadyExists = New(
	CodeAlreadyExists,
	"user",
	"A user with that username already exists",
	http.StatusBadRequest,
)

// ErrAvatarNotSet - DELETE аватара, когда его нет
var ErrAvatarNotSet = New(
	CodeInvalidOperation,
	"user",
	"Avatar is not set",
	http.StatusBadRequest,
)

// --- Images (загрузки в base64) ---

var ErrInvalidImage = New(
	CodeValidationFailed,
	"image",
	"Image data is malformed",
	http.StatusBadRequest,
)

var ErrImageTooLarge = New(
	CodeLimitExceeded,
	"image",
	"Image exceeds the allowed size",
	http.StatusRequestEntityTooLarge, // 413 - по байтам или по числу пикселей
)

// --- Ingredients ---

// ErrIngredientNotFound - 404 для GET /ingredients/:id.
// При создании рецепта сервис отдает FieldError по полю ingredients (400).
var ErrIngredientNotFound = New(
	CodeNotFound,
	"ingredient",
	"Ingredient not found",
	http.StatusNotFound,
)

// --- Recipes ---

var ErrRecipeNotFound = New(
	CodeNotFound,
	"recipe",
	"Recipe not found",
	http.StatusNotFound,
)

// ErrNotRecipeAuthor - изменять и удалять рецепт может только автор
var ErrNotRecipeAuthor = New(
	CodeForbidden,
	"recipe",
	"Only the author can modify this recipe",
	http.StatusForbidden, // 403 - явный запрет
)

// --- Favorites & Shopping cart ---
// Повторное добавление и удаление отсутствующего - это 400, а не 404/409.

var ErrAlreadyInFavorites = New(
	CodeAlreadyExists,
	"favorite",
	"Recipe is already in favorites",
	http.StatusBadRequest,
)

var ErrNotInFavorites = New(
	CodeNotFound,
	"favorite",
	"Recipe is not in favorites",
	http.StatusBadRequest,
)

var ErrAlreadyInCart = New(
	CodeAlreadyExists,
	"shopping_cart",
	"Recipe is already in the shopping cart",
	http.StatusBadRequest,
)

var ErrNotInCart = New(
	CodeNotFound,
	"shopping_cart",
	"Recipe is not in the shopping cart",
	http.StatusBadRequest,
)

// ErrShoppingCartEmpty - нечего выгружать в список покупок (пустой файл не отдаем)
var ErrShoppingCartEmpty = New(
	CodeInvalidOperation,
	"shopping_cart",
	"Shopping cart is empty",
	http.StatusBadRequest,
)

// --- Subscriptions ---

var ErrSelfSubscription = New(
	CodeInvalidOperation,
	"subscription",
	"You cannot subscribe to yourself",
	http.StatusBadRequest,
)

var ErrAlreadySubscribed = New(
	CodeAlreadyExists,
	"subscription",
	"You are already subscribed to this author",
	http.StatusBadRequest,
)

var ErrNotSubscribed = New(
	CodeNotFound,
	"subscription",
	"You are not subscribed to this author",
	http.StatusBadRequest,
)
