package service

import (
	"testing"

	"github.com/moment-next/internal/constants"
)

func TestCaptchaSceneEnabled(t *testing.T) {
	setting := CaptchaSetting{
		Provider: constants.CaptchaProviderImage,
		Scenes:   CaptchaSceneSetting{RegisterSendCode: true},
	}

	if !setting.IsSceneEnabled(constants.CaptchaSceneRegisterSendCode) {
		t.Fatal("register_send_code scene should be enabled")
	}
	if setting.IsSceneEnabled(constants.CaptchaSceneLogin) {
		t.Fatal("login scene should be disabled")
	}
	if setting.IsSceneEnabled(constants.CaptchaSceneResetSendCode) {
		t.Fatal("reset_send_code scene should be disabled")
	}
	if setting.IsSceneEnabled("unknown") {
		t.Fatal("unknown scene must never be enabled")
	}
}
