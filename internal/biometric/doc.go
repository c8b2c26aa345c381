// Package biometric сопоставляет дескриптор лица (probe) с зарегистрированными дескрипторами
// пользователей полным перебором по евклидову расстоянию.
//
// Matcher не хранит состояния: набор кандидатов читается заново на каждую попытку входа,
// поэтому один экземпляр можно вызывать из любого числа горутин.
package biometric
